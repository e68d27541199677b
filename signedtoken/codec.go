package signedtoken

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultSalt is the context string used for account email links.
	DefaultSalt = "email-configuration"
	// DefaultMaxAge bounds how long a link stays valid when callers pass zero.
	DefaultMaxAge = time.Hour

	separator = "."
)

var (
	// ErrTokenCreation is returned when claims cannot be serialized or the codec has no key.
	ErrTokenCreation = errors.New("could not create token")
	// ErrTokenExpired is returned when the envelope is older than the allowed max age.
	ErrTokenExpired = errors.New("token has expired")
	// ErrInvalidSignature is returned when the MAC does not match.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenDecode is returned for any other malformed input.
	ErrTokenDecode = errors.New("could not decode token")
)

// Strict decoding rejects non-zero padding bits, so every character of the
// signature is significant.
var b64 = base64.RawURLEncoding.Strict()

// Codec signs and verifies envelopes. Safe for concurrent use.
type Codec struct {
	key []byte
	now func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New derives the signing key from secret and salt. An empty secret is not
// rejected here; Encode reports it as ErrTokenCreation.
func New(secret, salt string, opts ...Option) *Codec {
	if salt == "" {
		salt = DefaultSalt
	}

	c := &Codec{now: time.Now}
	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(salt))
		c.key = mac.Sum(nil)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes claims with the current time and signs them.
func (c *Codec) Encode(claims map[string]any) (string, error) {
	if len(c.key) == 0 {
		return "", fmt.Errorf("%w: signing key not configured", ErrTokenCreation)
	}
	if claims == nil {
		claims = map[string]any{}
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}

	signed := b64.EncodeToString(payload) + separator + encodeTimestamp(c.now().Unix())
	return signed + separator + b64.EncodeToString(c.sign(signed)), nil
}

// Decode verifies token and returns its claims. maxAge <= 0 uses DefaultMaxAge.
//
// The signature is checked before the timestamp, so an expired envelope is
// only reported as expired when it is otherwise authentic.
func (c *Codec) Decode(token string, maxAge time.Duration) (map[string]any, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if len(c.key) == 0 {
		return nil, fmt.Errorf("%w: signing key not configured", ErrTokenDecode)
	}

	sigIdx := strings.LastIndex(token, separator)
	if sigIdx <= 0 {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	signed, sigPart := token[:sigIdx], token[sigIdx+1:]

	sig, err := b64.DecodeString(sigPart)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", ErrInvalidSignature)
	}
	if !hmac.Equal(sig, c.sign(signed)) {
		return nil, ErrInvalidSignature
	}

	tsIdx := strings.LastIndex(signed, separator)
	if tsIdx <= 0 {
		return nil, fmt.Errorf("%w: missing timestamp", ErrTokenDecode)
	}
	payloadPart, tsPart := signed[:tsIdx], signed[tsIdx+1:]

	issuedAt, err := decodeTimestamp(tsPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	age := c.now().Sub(time.Unix(issuedAt, 0))
	if age > maxAge {
		return nil, fmt.Errorf("%w: age %s > %s", ErrTokenExpired, age.Truncate(time.Second), maxAge)
	}

	payload, err := b64.DecodeString(payloadPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	var claims map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: empty claims", ErrTokenDecode)
	}

	return claims, nil
}

func (c *Codec) sign(value string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// Timestamps are big-endian with leading zero bytes trimmed.
func encodeTimestamp(ts int64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ts))
	trimmed := bytes.TrimLeft(buf[:], "\x00")
	return b64.EncodeToString(trimmed)
}

func decodeTimestamp(s string) (int64, error) {
	raw, err := b64.DecodeString(s)
	if err != nil {
		return 0, errors.New("malformed timestamp")
	}
	if len(raw) == 0 || len(raw) > 8 {
		return 0, errors.New("invalid timestamp length")
	}

	var buf [8]byte
	copy(buf[8-len(raw):], raw)
	ts := int64(binary.BigEndian.Uint64(buf[:]))
	if ts < 0 {
		return 0, errors.New("negative timestamp")
	}
	return ts, nil
}
