package bloombox

import (
	"strings"
	"time"

	"github.com/MrEthical07/bloombox/internal/security"
)

// SecurityReport is a read-only snapshot of the engine's security posture,
// returned by [Engine.SecurityReport]. It never contains secrets.
type SecurityReport struct {
	SigningAlgorithm      string
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	Argon2                PasswordConfigReport
	HashUpgradeOnLogin    bool
	LoginThrottleActive   bool
	IPThrottleActive      bool
	RefreshThrottleActive bool
	VerifyLinkMaxAge      time.Duration
	ResetLinkMaxAge       time.Duration
	SignupRoleOpen        bool
	Warnings              []string
}

type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	Workers     int
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	cfg := e.config
	r := security.BuildReport(security.ReportInput{
		SigningAlgorithm: strings.ToUpper(cfg.JWT.SigningMethod),
		SecretLength:     len(cfg.JWT.Secret),
		AccessTTL:        cfg.JWT.AccessTTL,
		RefreshTTL:       cfg.JWT.RefreshTTL,
		Password: security.PasswordReport{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
			Workers:     cfg.Password.Workers,
		},
		UpgradeOnLogin:          cfg.Password.UpgradeOnLogin,
		MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
		LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
		EnableIPThrottle:        cfg.Security.EnableIPThrottle,
		EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
		MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
		RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		VerifyMaxAge:            cfg.Links.VerifyMaxAge,
		ResetMaxAge:             cfg.Links.ResetMaxAge,
		AllowSignupRole:         cfg.Security.AllowSignupRole,
	})

	return SecurityReport{
		SigningAlgorithm: r.SigningAlgorithm,
		AccessTTL:        r.AccessTTL,
		RefreshTTL:       r.RefreshTTL,
		Argon2: PasswordConfigReport{
			Memory:      r.Argon2.Memory,
			Time:        r.Argon2.Time,
			Parallelism: r.Argon2.Parallelism,
			SaltLength:  r.Argon2.SaltLength,
			KeyLength:   r.Argon2.KeyLength,
			Workers:     r.Argon2.Workers,
		},
		HashUpgradeOnLogin:    r.HashUpgradeOnLogin,
		LoginThrottleActive:   r.LoginThrottleActive,
		IPThrottleActive:      r.IPThrottleActive,
		RefreshThrottleActive: r.RefreshThrottleActive,
		VerifyLinkMaxAge:      r.VerifyLinkMaxAge,
		ResetLinkMaxAge:       r.ResetLinkMaxAge,
		SignupRoleOpen:        r.SignupRoleOpen,
		Warnings:              r.Warnings,
	}
}
