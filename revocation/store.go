package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps Redis failures.
var ErrStoreUnavailable = errors.New("revocation store unavailable")

const (
	// DefaultPrefix namespaces blocklist keys.
	DefaultPrefix = "blocklist:"
	// DefaultFallbackTTL covers the longest-lived token class (refresh, 7 days).
	DefaultFallbackTTL = 7 * 24 * time.Hour

	revokedMarker = "true"
	minTTL        = time.Second
)

// Store records revoked token identifiers with a TTL.
type Store struct {
	redis       redis.UniversalClient
	prefix      string
	fallbackTTL time.Duration
}

// NewStore returns a Store. Empty prefix and non-positive fallbackTTL take
// the package defaults.
func NewStore(client redis.UniversalClient, prefix string, fallbackTTL time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultFallbackTTL
	}
	return &Store{
		redis:       client,
		prefix:      prefix,
		fallbackTTL: fallbackTTL,
	}
}

// revokeScript writes the marker unless the existing entry outlives ttl.
// Running the PTTL read and the SET as one script keeps concurrent revokes
// of the same jti from shortening each other.
var revokeScript = redis.NewScript(`
local current = redis.call('PTTL', KEYS[1])
if current > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

func (s *Store) key(jti string) string {
	return s.prefix + jti
}

// Revoke marks jti as revoked for ttl. Pass the token's remaining lifetime;
// ttl <= 0 means unknown and uses the fallback TTL. Revoking twice is harmless
// and keeps the longer of the two TTLs.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if ttl <= 0 {
		ttl = s.fallbackTTL
	}
	if ttl < minTTL {
		ttl = minTTL
	}

	err := revokeScript.Run(ctx, s.redis, []string{s.key(jti)}, revokedMarker, ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked and the entry has not expired.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	n, err := s.redis.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

// Ping checks connectivity; used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
