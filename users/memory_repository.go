package users

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps users in process memory. It is safe for concurrent
// use and returns copies so callers cannot mutate stored records.
type MemoryRepository struct {
	mu      sync.RWMutex
	byUID   map[string]User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byUID:   make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}
	r.byUID[user.UID] = *user
	r.byEmail[user.Email] = user.UID
	return nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uid, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byUID[uid]
	return &u, nil
}

func (r *MemoryRepository) GetByUID(_ context.Context, uid string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byUID[user.UID]
	if !ok {
		return ErrNotFound
	}
	// Email and creation time are immutable.
	updated := *user
	updated.Email = existing.Email
	updated.CreatedAt = existing.CreatedAt
	r.byUID[user.UID] = updated
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.byUID))
	for _, u := range r.byUID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	delete(r.byUID, uid)
	delete(r.byEmail, u.Email)
	return nil
}
