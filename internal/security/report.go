package security

import "time"

// Minimum Argon2id costs below which a configuration is reported as weak.
const (
	minArgonMemoryKB = 19 * 1024
	minArgonTime     = 2
	minSecretBytes   = 32
)

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	Workers     int
}

type Report struct {
	SigningAlgorithm      string
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	Argon2                PasswordReport
	HashUpgradeOnLogin    bool
	LoginThrottleActive   bool
	IPThrottleActive      bool
	RefreshThrottleActive bool
	VerifyLinkMaxAge      time.Duration
	ResetLinkMaxAge       time.Duration
	SignupRoleOpen        bool
	// Warnings lists weak settings in a stable order.
	Warnings              []string
}

type ReportInput struct {
	SigningAlgorithm        string
	SecretLength            int
	AccessTTL               time.Duration
	RefreshTTL              time.Duration
	Password                PasswordReport
	UpgradeOnLogin          bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
	VerifyMaxAge            time.Duration
	ResetMaxAge             time.Duration
	AllowSignupRole         bool
}

func BuildReport(input ReportInput) Report {
	loginThrottle := input.MaxLoginAttempts > 0 &&
		input.LoginCooldownDuration > 0

	refreshThrottle := input.EnableRefreshThrottle &&
		input.MaxRefreshAttempts > 0 &&
		input.RefreshCooldownDuration > 0

	return Report{
		SigningAlgorithm:      input.SigningAlgorithm,
		AccessTTL:             input.AccessTTL,
		RefreshTTL:            input.RefreshTTL,
		Argon2:                input.Password,
		HashUpgradeOnLogin:    input.UpgradeOnLogin,
		LoginThrottleActive:   loginThrottle,
		IPThrottleActive:      loginThrottle && input.EnableIPThrottle,
		RefreshThrottleActive: refreshThrottle,
		VerifyLinkMaxAge:      input.VerifyMaxAge,
		ResetLinkMaxAge:       input.ResetMaxAge,
		SignupRoleOpen:        input.AllowSignupRole,
		Warnings:              warnings(input, loginThrottle),
	}
}

func warnings(input ReportInput, loginThrottle bool) []string {
	var out []string
	if input.SecretLength < minSecretBytes {
		out = append(out, "jwt secret shorter than 32 bytes")
	}
	if input.Password.Memory < minArgonMemoryKB {
		out = append(out, "argon2id memory below 19 MiB")
	}
	if input.Password.Time < minArgonTime {
		out = append(out, "argon2id time cost below 2")
	}
	if !loginThrottle {
		out = append(out, "login throttle disabled")
	}
	if input.AccessTTL > input.RefreshTTL {
		out = append(out, "access ttl exceeds refresh ttl")
	}
	if input.ResetMaxAge > input.VerifyMaxAge {
		out = append(out, "reset links outlive verification links")
	}
	if input.AllowSignupRole {
		out = append(out, "signup may choose any role")
	}
	return out
}
