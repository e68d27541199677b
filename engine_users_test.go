package bloombox

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()

	list, err := env.engine.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	env.signup(t, "alice@example.com", "")
	env.signup(t, "bob@example.com", "admin")

	list, err = env.engine.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t, testConfig())
	u := env.signup(t, "alice@example.com", "")
	ctx := context.Background()

	if err := env.engine.DeleteUser(ctx, u.UID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := env.engine.DeleteUser(ctx, u.UID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
	if err := env.engine.DeleteUser(ctx, "not-a-uuid"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for malformed uid, got %v", err)
	}

	if _, err := env.engine.Login(ctx, LoginRequest{Email: "alice@example.com", Password: testPassword}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deleted user can still log in: %v", err)
	}

	// The address is free again.
	env.signup(t, "alice@example.com", "")
}

func TestNilEngine(t *testing.T) {
	var e *Engine
	ctx := context.Background()

	if _, err := e.Signup(ctx, SignupRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Signup: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.Login(ctx, LoginRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Login: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.Authenticate(ctx, "Bearer x", AccessToken); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Authenticate: expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.ListUsers(ctx); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("ListUsers: expected ErrEngineNotReady, got %v", err)
	}
	if err := e.Ready(ctx); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Ready: expected ErrEngineNotReady, got %v", err)
	}
}

func TestReady(t *testing.T) {
	env := newTestEnv(t, testConfig())
	if err := env.engine.Ready(context.Background()); err != nil {
		t.Fatalf("Ready failed: %v", err)
	}
	env.mr.Close()
	if err := env.engine.Ready(context.Background()); !errors.Is(err, ErrRevocationUnavailable) {
		t.Fatalf("expected ErrRevocationUnavailable, got %v", err)
	}
}

func TestEngineRecordsMetrics(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := metrics.New()
	mailer := &captureMailer{}
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserRepository(users.NewMemoryRepository()).
		WithMailer(mailer).
		WithMetrics(m).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx := context.Background()

	if _, err := engine.Signup(ctx, signupRequest("alice@example.com", "")); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := engine.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Authenticate(ctx, "", AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	want := map[string]float64{
		`bloombox_auth_events_total{event="signup"}`:            1,
		`bloombox_auth_events_total{event="login_failure"}`:     1,
		`bloombox_guard_rejections_total{code="invalid_token"}`: 1,
	}
	got := gatherCounters(t, m)
	for series, v := range want {
		if got[series] != v {
			t.Fatalf("%s = %v, want %v", series, got[series], v)
		}
	}
}

func gatherCounters(t *testing.T, m *metrics.Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	out := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+`="`+lp.GetValue()+`"`)
			}
			out[mf.GetName()+"{"+strings.Join(labels, ",")+"}"] = metric.GetCounter().GetValue()
		}
	}
	return out
}
