package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewUser holds the fields needed to create a directory record.
type NewUser struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	PasswordHash string
}

// Service is the directory front door used by the auth engine.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) GetByUID(ctx context.Context, uid string) (*User, error) {
	if _, err := uuid.Parse(uid); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByUID(ctx, uid)
}

// Exists reports whether an account is registered under email.
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Create stores a new unverified user with a fresh UUID. An empty role
// becomes RoleUser.
func (s *Service) Create(ctx context.Context, in NewUser) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleUser
	}
	now := s.now().UTC()
	u := &User{
		UID:          uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        NormalizeEmail(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies patch to the user identified by uid and bumps UpdatedAt.
func (s *Service) Update(ctx context.Context, uid string, patch Patch) (*User, error) {
	u, err := s.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	patch.apply(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, uid string) error {
	if _, err := uuid.Parse(uid); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, uid)
}
