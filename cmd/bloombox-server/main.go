// Command bloombox-server runs the bloombox HTTP API.
//
// Production mode needs PostgreSQL and Redis:
//
//	JWT_SECRET=... DATABASE_URL=postgres://... REDIS_URL=redis://... bloombox-server
//
// Development mode runs against an in-process Redis and an in-memory user
// directory, and logs outgoing mail instead of sending it:
//
//	bloombox-server -dev -s dev-secret
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/internal/config"
	"github.com/MrEthical07/bloombox/internal/logging"
	"github.com/MrEthical07/bloombox/internal/migrations"
	"github.com/MrEthical07/bloombox/internal/server"
	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
	"github.com/alicebob/miniredis/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bloombox-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, closeRedis, err := openRedis(cfg)
	if err != nil {
		return err
	}
	defer closeRedis()

	repo, closeDB, err := openUsers(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	m := metrics.New()

	var sender mail.Sender = mail.NewLogSender(log)
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(cfg.SMTP)
	}
	queue := mail.NewQueue(mail.QueueConfig{
		BufferSize:  cfg.Engine.Mail.QueueSize,
		SendTimeout: cfg.Engine.Mail.SendTimeout,
	}, sender, log, m)
	defer queue.Close()

	engine, err := bloombox.New().
		WithConfig(cfg.Engine).
		WithRedis(rdb).
		WithUserRepository(repo).
		WithMailer(queue).
		WithLogger(log).
		WithMetrics(m).
		Build()
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := engine.Ready(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	report := engine.SecurityReport()
	log.Info(ctx, "security posture",
		"signing_algorithm", report.SigningAlgorithm,
		"access_ttl", report.AccessTTL,
		"refresh_ttl", report.RefreshTTL,
		"argon2_memory_kb", report.Argon2.Memory,
		"argon2_time", report.Argon2.Time,
		"hash_workers", report.Argon2.Workers,
		"login_throttle", report.LoginThrottleActive,
		"ip_throttle", report.IPThrottleActive,
		"refresh_throttle", report.RefreshThrottleActive,
		"signup_role_open", report.SignupRoleOpen,
	)
	for _, w := range report.Warnings {
		log.Warn(ctx, "weak security setting", "warning", w)
	}

	srv := server.New(engine, log, m, server.Options{
		Addr:            cfg.Addr,
		TrustProxy:      cfg.TrustProxy,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	return srv.Run(ctx)
}

func openRedis(cfg *config.Config) (redis.UniversalClient, func(), error) {
	if cfg.Dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("miniredis: %w", err)
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return client, func() { _ = client.Close() }, nil
}

func openUsers(ctx context.Context, cfg *config.Config) (users.Repository, func(), error) {
	if cfg.Dev {
		return users.NewMemoryRepository(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return users.NewPostgresRepository(db), func() { _ = db.Close() }, nil
}
