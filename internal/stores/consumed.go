package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrAlreadyConsumed is returned when an envelope was redeemed before.
	ErrAlreadyConsumed = errors.New("envelope already consumed")
	// ErrLedgerUnavailable wraps Redis failures.
	ErrLedgerUnavailable = errors.New("consumed ledger unavailable")
)

// ConsumedLedger marks signed envelopes as used exactly once.
type ConsumedLedger struct {
	redis  redis.UniversalClient
	prefix string
}

// NewConsumedLedger returns a ledger. An empty prefix defaults to "used:".
func NewConsumedLedger(redisClient redis.UniversalClient, prefix string) *ConsumedLedger {
	if prefix == "" {
		prefix = "used:"
	}
	return &ConsumedLedger{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (l *ConsumedLedger) key(envelope string) string {
	sum := sha256.Sum256([]byte(envelope))
	return l.prefix + hex.EncodeToString(sum[:])
}

// Consume atomically records envelope as used for ttl. The first caller wins;
// every later call for the same envelope gets ErrAlreadyConsumed.
func (l *ConsumedLedger) Consume(ctx context.Context, envelope string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}

	ok, err := l.redis.SetNX(ctx, l.key(envelope), time.Now().Unix(), ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	if !ok {
		return ErrAlreadyConsumed
	}
	return nil
}

// Release forgets envelope so it can be redeemed again. Used when the action
// guarded by Consume failed after the envelope was recorded.
func (l *ConsumedLedger) Release(ctx context.Context, envelope string) error {
	if err := l.redis.Del(ctx, l.key(envelope)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return nil
}

// IsConsumed reports whether envelope was already redeemed.
func (l *ConsumedLedger) IsConsumed(ctx context.Context, envelope string) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(envelope)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return n == 1, nil
}
