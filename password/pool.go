package password

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool runs hashing work on a bounded number of goroutines so slow hashes
// cannot starve unrelated requests of CPU.
type Pool struct {
	hasher *Argon2
	sem    *semaphore.Weighted
}

// NewPool bounds hasher to workers concurrent operations. workers <= 0 uses
// runtime.NumCPU().
func NewPool(hasher *Argon2, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

// Hasher returns the underlying hasher.
func (p *Pool) Hasher() *Argon2 {
	return p.hasher
}

// Hash waits for a free slot and hashes password. If ctx ends first the
// result is abandoned and ctx.Err() is returned.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	type result struct {
		hash string
		err  error
	}

	res, err := run(ctx, p.sem, func() result {
		h, err := p.hasher.Hash(password)
		return result{hash: h, err: err}
	})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify waits for a free slot and verifies password against encodedHash.
func (p *Pool) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	return run(ctx, p.sem, func() bool {
		return p.hasher.Verify(password, encodedHash)
	})
}

// NeedsUpgrade is cheap and runs inline.
func (p *Pool) NeedsUpgrade(encodedHash string) bool {
	upgrade, err := p.hasher.NeedsUpgrade(encodedHash)
	return err == nil && upgrade
}

func run[T any](ctx context.Context, sem *semaphore.Weighted, fn func() T) (T, error) {
	var zero T
	// Acquire may succeed on an already-done context.
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan T, 1)
	go func() {
		defer sem.Release(1)
		done <- fn()
	}()

	select {
	case v := <-done:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
