package config

import (
	"flag"
	"io"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-d string   PostgreSQL DSN
//	-r string   Redis URL
//	-s string   JWT secret
//	-l string   log level
//	-dev        in-process Redis and in-memory users
//	-trust-proxy  read the client IP from X-Forwarded-For
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("bloombox-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "database DSN")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	secret := fs.String("s", string(cfg.Engine.JWT.Secret), "JWT secret")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.Dev, "dev", cfg.Dev, "run with in-process redis and in-memory users")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", cfg.TrustProxy, "trust X-Forwarded-For")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret != "" {
		cfg.Engine.JWT.Secret = []byte(*secret)
	}
	return nil
}
