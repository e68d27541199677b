package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window is a fixed-window budget: at most Limit hits per subject in each
// Period. A zero Limit disables the window.
type Window struct {
	Prefix string
	Limit  int
	Period time.Duration
}

// Enabled reports whether the window enforces anything.
func (w Window) Enabled() bool {
	return w.Limit > 0 && w.Period > 0
}

// Key returns the Redis key counting subject.
func (w Window) Key(subject string) string {
	return w.Prefix + subject
}

// hitScript increments the counter and starts the window on the first hit,
// so a counter can never be left without an expiry.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Limiter counts hits per subject in Redis. It holds no per-window state;
// callers pass the Window on every call.
type Limiter struct {
	redis redis.UniversalClient
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient) *Limiter {
	return &Limiter{redis: redisClient}
}

// Check returns ErrRateLimited when subject already used its budget in w.
// It does not count a hit.
func (l *Limiter) Check(ctx context.Context, w Window, subject string) error {
	if !w.Enabled() {
		return nil
	}
	count, err := l.Count(ctx, w, subject)
	if err != nil {
		return err
	}
	if count >= w.Limit {
		return ErrRateLimited
	}
	return nil
}

// Hit counts one event for subject and returns ErrRateLimited when that
// event went over budget.
func (l *Limiter) Hit(ctx context.Context, w Window, subject string) error {
	if !w.Enabled() {
		return nil
	}

	ttl := w.Period.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	count, err := hitScript.Run(ctx, l.redis, []string{w.Key(subject)}, ttl).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count > int64(w.Limit) {
		return ErrRateLimited
	}
	return nil
}

// Count returns the hits recorded for subject in the current window.
// Missing keys count as zero and do not reveal whether the subject exists.
func (l *Limiter) Count(ctx context.Context, w Window, subject string) (int, error) {
	count, err := l.redis.Get(ctx, w.Key(subject)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Clear drops the counters named by keys (see [Window.Key]).
func (l *Limiter) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
