package bloombox

import (
	"errors"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/MrEthical07/bloombox/password"
	"github.com/MrEthical07/bloombox/signedtoken"
)

// Config is the engine configuration. Build it with [DefaultConfig] and
// override fields; it is treated as immutable once passed to the Builder.
type Config struct {
	AppName    string
	JWT        JWTConfig
	Password   PasswordConfig
	Revocation RevocationConfig
	Links      LinkConfig
	Security   SecurityConfig
	Mail       MailConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls session token signing.
type JWTConfig struct {
	Secret        []byte
	SigningMethod string // HS256 (default), HS384, HS512
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id costs and the hashing pool size.
type PasswordConfig struct {
	Memory           uint32 // in KB
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
	Workers          int
	UpgradeOnLogin   bool
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig controls the Redis blocklist.
type RevocationConfig struct {
	RedisPrefix string
	// FallbackTTL is used when a token's remaining life is unknown. It must
	// cover the refresh token lifetime.
	FallbackTTL time.Duration
}

/*
====================================
LINK CONFIG
====================================
*/

// LinkConfig controls the signed links sent by email.
type LinkConfig struct {
	// BaseURL is prepended to /api/v1/... paths, e.g. "http://localhost:8000".
	BaseURL        string
	Salt           string
	VerifyMaxAge   time.Duration
	ResetMaxAge    time.Duration
	ConsumedPrefix string
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds the throttling knobs.
type SecurityConfig struct {
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
	// AllowSignupRole lets the signup body choose a role other than user.
	// Off by default: with it on, anyone can register as admin.
	AllowSignupRole bool
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig controls the outgoing mail queue.
type MailConfig struct {
	QueueSize   int
	SendTimeout time.Duration
}

// DefaultConfig returns production defaults. JWT.Secret is left empty and
// must be provided.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		AppName: "Bloombox",
		JWT: JWTConfig{
			SigningMethod: "HS256",
			AccessTTL:     60 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:           pw.Memory,
			Time:             pw.Time,
			Parallelism:      pw.Parallelism,
			SaltLength:       pw.SaltLength,
			KeyLength:        pw.KeyLength,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
			Workers:          runtime.NumCPU(),
			UpgradeOnLogin:   true,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "blocklist:",
			FallbackTTL: 7 * 24 * time.Hour,
		},
		Links: LinkConfig{
			BaseURL:        "http://localhost:8000",
			Salt:           signedtoken.DefaultSalt,
			VerifyMaxAge:   signedtoken.DefaultMaxAge,
			ResetMaxAge:    signedtoken.DefaultMaxAge,
			ConsumedPrefix: "used:",
		},
		Security: SecurityConfig{
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			EnableRefreshThrottle:   true,
			MaxRefreshAttempts:      60,
			RefreshCooldownDuration: time.Minute,
		},
		Mail: MailConfig{
			QueueSize:   256,
			SendTimeout: 30 * time.Second,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT Secret must be set")
	}
	switch strings.ToUpper(c.JWT.SigningMethod) {
	case "HS256", "HS384", "HS512":
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Password
	if c.Password.Workers < 0 {
		return errors.New("Password Workers must be >= 0")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}

	// Revocation
	if c.Revocation.FallbackTTL < c.JWT.RefreshTTL {
		return errors.New("Revocation FallbackTTL must cover JWT RefreshTTL")
	}

	// Links
	u, err := url.Parse(c.Links.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("Links BaseURL must be an absolute URL")
	}
	if c.Links.Salt == "" {
		return errors.New("Links Salt must be set")
	}
	if c.Links.VerifyMaxAge <= 0 || c.Links.ResetMaxAge <= 0 {
		return errors.New("Links max ages must be > 0")
	}

	// Security
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("Security MaxLoginAttempts must be > 0")
	}
	if c.Security.LoginCooldownDuration <= 0 {
		return errors.New("Security LoginCooldownDuration must be > 0")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 || c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("Security refresh throttle requires MaxRefreshAttempts and RefreshCooldownDuration > 0")
		}
	}

	// Mail
	if c.Mail.QueueSize < 0 {
		return errors.New("Mail QueueSize must be >= 0")
	}

	return nil
}
