//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/users"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	integrationPassword = "integration-password-1"
	resetLinkPath       = "/api/v1/auth/password-reset-confirm/"
	verifyLinkPath      = "/api/v1/auth/verify/"
)

type inbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (in *inbox) Enqueue(_ context.Context, msg mail.Message) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.msgs = append(in.msgs, msg)
	return true
}

// token returns the token following path in the newest message.
func (in *inbox) token(t *testing.T, path string) string {
	t.Helper()
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.msgs) == 0 {
		t.Fatal("inbox is empty")
	}
	html := in.msgs[len(in.msgs)-1].HTML
	i := strings.Index(html, path)
	if i < 0 {
		t.Fatalf("newest message has no %s link", path)
	}
	rest := html[i+len(path):]
	return rest[:strings.IndexByte(rest, '"')]
}

// redisMode describes which Redis backend a suite runs against.
type redisMode struct {
	name  string
	setup func(t *testing.T) redis.UniversalClient
}

// redisModes always includes miniredis. A real server is added when
// REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes() []redisMode {
	modes := []redisMode{{
		name: "miniredis",
		setup: func(t *testing.T) redis.UniversalClient {
			t.Helper()
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("miniredis: %v", err)
			}
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() {
				_ = rdb.Close()
				mr.Close()
			})
			return rdb
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				rdb.FlushDB(context.Background())
				t.Cleanup(func() {
					rdb.FlushDB(context.Background())
					_ = rdb.Close()
				})
				return rdb
			},
		})
	}
	return modes
}

func integrationConfig() bloombox.Config {
	cfg := bloombox.DefaultConfig()
	cfg.JWT.Secret = []byte("integration-secret-0123456789abcd")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Links.BaseURL = "http://localhost:8000"
	return cfg
}

func newIntegrationEngine(t *testing.T, rdb redis.UniversalClient) (*bloombox.Engine, *inbox) {
	t.Helper()

	box := &inbox{}
	engine, err := bloombox.New().
		WithConfig(integrationConfig()).
		WithRedis(rdb).
		WithUserRepository(users.NewMemoryRepository()).
		WithMailer(box).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, box
}

// verifiedAccount signs up email, redeems the verification link and logs in.
func verifiedAccount(t *testing.T, engine *bloombox.Engine, box *inbox, email string) *bloombox.LoginResult {
	t.Helper()
	ctx := context.Background()

	_, err := engine.Signup(ctx, bloombox.SignupRequest{
		Email:     email,
		Username:  strings.Split(email, "@")[0],
		FirstName: "Integration",
		LastName:  "User",
		Password:  integrationPassword,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := engine.VerifyEmail(ctx, box.token(t, verifyLinkPath)); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	res, err := engine.Login(ctx, bloombox.LoginRequest{Email: email, Password: integrationPassword})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return res
}
