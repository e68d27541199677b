package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envVars names every environment variable the server reads. Fields are
// seeded from the current Config so unset variables keep their defaults.
type envVars struct {
	JWTSecret        string         `envconfig:"JWT_SECRET"`
	JWTAlgorithm     string         `envconfig:"JWT_ALGORITHM"`
	AccessTTL        time.Duration  `envconfig:"ACCESS_TOKEN_TTL"`
	RefreshTTL       time.Duration  `envconfig:"REFRESH_TOKEN_TTL"`
	Domain           string         `envconfig:"DOMAIN"`
	AppName          string         `envconfig:"APP_NAME"`
	LinkMaxAge       *time.Duration `envconfig:"LINK_MAX_AGE"`
	MaxLoginAttempts int            `envconfig:"MAX_LOGIN_ATTEMPTS"`
	HashWorkers      int            `envconfig:"HASH_WORKERS"`
	AllowSignupRole  bool           `envconfig:"ALLOW_SIGNUP_ROLE"`

	Addr        string `envconfig:"ADDR"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	TrustProxy  bool   `envconfig:"TRUST_PROXY"`

	MailServer   string `envconfig:"MAIL_SERVER"`
	MailPort     int    `envconfig:"MAIL_PORT"`
	MailUsername string `envconfig:"MAIL_USERNAME"`
	MailPassword string `envconfig:"MAIL_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM"`
}

// loadDotEnv exports the variables of the .env file at path that are not
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: read %s: %w", path, err)
}

func applyEnv(cfg *Config) error {
	vars := envVars{
		JWTSecret:        string(cfg.Engine.JWT.Secret),
		JWTAlgorithm:     cfg.Engine.JWT.SigningMethod,
		AccessTTL:        cfg.Engine.JWT.AccessTTL,
		RefreshTTL:       cfg.Engine.JWT.RefreshTTL,
		AppName:          cfg.Engine.AppName,
		MaxLoginAttempts: cfg.Engine.Security.MaxLoginAttempts,
		HashWorkers:      cfg.Engine.Password.Workers,
		AllowSignupRole:  cfg.Engine.Security.AllowSignupRole,

		Addr:        cfg.Addr,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		LogLevel:    cfg.LogLevel,
		TrustProxy:  cfg.TrustProxy,

		MailServer:   cfg.SMTP.Host,
		MailPort:     cfg.SMTP.Port,
		MailUsername: cfg.SMTP.Username,
		MailPassword: cfg.SMTP.Password,
		MailFrom:     cfg.SMTP.From,
	}

	if err := envconfig.Process("", &vars); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	cfg.Engine.JWT.Secret = []byte(vars.JWTSecret)
	cfg.Engine.JWT.SigningMethod = vars.JWTAlgorithm
	cfg.Engine.JWT.AccessTTL = vars.AccessTTL
	cfg.Engine.JWT.RefreshTTL = vars.RefreshTTL
	if vars.Domain != "" {
		cfg.Engine.Links.BaseURL = domainToBaseURL(vars.Domain)
	}
	cfg.Engine.AppName = vars.AppName
	if vars.LinkMaxAge != nil {
		cfg.Engine.Links.VerifyMaxAge = *vars.LinkMaxAge
		cfg.Engine.Links.ResetMaxAge = *vars.LinkMaxAge
	}
	cfg.Engine.Security.MaxLoginAttempts = vars.MaxLoginAttempts
	cfg.Engine.Password.Workers = vars.HashWorkers
	cfg.Engine.Security.AllowSignupRole = vars.AllowSignupRole

	cfg.Addr = vars.Addr
	cfg.DatabaseURL = vars.DatabaseURL
	cfg.RedisURL = vars.RedisURL
	cfg.LogLevel = vars.LogLevel
	cfg.TrustProxy = vars.TrustProxy

	cfg.SMTP.Host = vars.MailServer
	cfg.SMTP.Port = vars.MailPort
	cfg.SMTP.Username = vars.MailUsername
	cfg.SMTP.Password = vars.MailPassword
	cfg.SMTP.From = vars.MailFrom
	return nil
}
