package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/bloombox/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names one of the supported HMAC algorithms.
type SigningMethod string

const (
	MethodHS256 SigningMethod = "HS256"
	MethodHS384 SigningMethod = "HS384"
	MethodHS512 SigningMethod = "HS512"

	// DefaultAccessTTL applies when Issue is called for an access token without an expiry.
	DefaultAccessTTL = 60 * time.Minute
	// DefaultRefreshTTL applies when Issue is called for a refresh token without an expiry.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrMissingJTI is returned by Parse for tokens without a token identifier.
	ErrMissingJTI = errors.New("token has no jti")
	// ErrMissingUser is returned by Parse for tokens without user claims.
	ErrMissingUser = errors.New("token has no user claims")
)

// Config fixes the algorithm, secret, and default lifetimes. There are no
// per-tenant keys.
type Config struct {
	Secret        []byte
	SigningMethod SigningMethod
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

// UserClaims is the user identity embedded under the "user" claim.
type UserClaims struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role,omitempty"`
}

// Claims is the decoded session token payload: {user, exp, jti, refresh}.
type Claims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

// JTI returns the unique token identifier.
func (c *Claims) JTI() string {
	return c.ID
}

// Remaining returns how long the token stays valid after now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager issues and verifies session tokens. Immutable after construction
// and safe for concurrent use.
type Manager struct {
	config Config
	method jwt.SigningMethod
	parser *jwt.Parser
	log    logging.Logger
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config, log logging.Logger, opts ...Option) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret required")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	method, err := lookupMethod(cfg.SigningMethod)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}

	m := &Manager{
		config: cfg,
		method: method,
		log:    log.With("component", "jwt"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	m.parser = jwt.NewParser(options...)

	return m, nil
}

// AccessTTL returns the configured access token lifetime.
func (j *Manager) AccessTTL() time.Duration {
	return j.config.AccessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (j *Manager) RefreshTTL() time.Duration {
	return j.config.RefreshTTL
}

// Issue signs a new token for user with a fresh jti. expiry <= 0 selects the
// configured default for the token kind.
func (j *Manager) Issue(user UserClaims, refresh bool, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = j.config.AccessTTL
		if refresh {
			expiry = j.config.RefreshTTL
		}
	}

	claims := Claims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(j.now().Add(expiry)),
		},
	}

	token, err := jwt.NewWithClaims(j.method, claims).SignedString(j.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse decodes and validates tokenStr, returning the reason on failure.
func (j *Manager) Parse(tokenStr string) (*Claims, error) {
	token, err := j.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return j.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ID == "" {
		return nil, ErrMissingJTI
	}
	if claims.User.Email == "" && claims.User.UserUID == "" {
		return nil, ErrMissingUser
	}

	return claims, nil
}

// Verify decodes tokenStr and returns its claims, or nil if the token is
// malformed, forged, signed with another algorithm, or expired. Failures are
// logged at debug level and never returned.
func (j *Manager) Verify(ctx context.Context, tokenStr string) *Claims {
	claims, err := j.Parse(tokenStr)
	if err != nil {
		j.log.Debug(ctx, "token rejected", "reason", err.Error())
		return nil
	}
	return claims
}

func lookupMethod(name SigningMethod) (jwt.SigningMethod, error) {
	switch SigningMethod(strings.ToUpper(string(name))) {
	case MethodHS256, "":
		return jwt.SigningMethodHS256, nil
	case MethodHS384:
		return jwt.SigningMethodHS384, nil
	case MethodHS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing method %q", name)
	}
}
