package middleware

import (
	"context"
	"testing"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/users"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testPassword = "correct-password-123"

func newTestEngine(t *testing.T) (*bloombox.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	cfg := bloombox.DefaultConfig()
	cfg.JWT.Secret = []byte("middleware-test-secret-0123456789")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := bloombox.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserRepository(users.NewMemoryRepository()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, mr
}

// seedUser registers email, grants role through the directory and logs it in.
func seedUser(t *testing.T, engine *bloombox.Engine, email, role string, verified bool) *bloombox.LoginResult {
	t.Helper()
	ctx := context.Background()

	u, err := engine.Signup(ctx, bloombox.SignupRequest{
		Email:     email,
		Username:  "tester",
		FirstName: "Test",
		LastName:  "User",
		Password:  testPassword,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if role != "" && role != users.RoleUser {
		if _, err := engine.Users().Update(ctx, u.UID, users.Patch{Role: &role}); err != nil {
			t.Fatalf("Update role failed: %v", err)
		}
	}
	if verified {
		if _, err := engine.Users().Update(ctx, u.UID, users.Patch{IsVerified: &verified}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	res, err := engine.Login(ctx, bloombox.LoginRequest{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return res
}
