package bloombox

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/users"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testPassword = "correct-password-123"

type captureMailer struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (m *captureMailer) Enqueue(_ context.Context, msg mail.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return true
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func (m *captureMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.msgs) == 0 {
		t.Fatal("expected a queued email")
	}
	return m.msgs[len(m.msgs)-1]
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	repo   *users.MemoryRepository
	mailer *captureMailer
	clock  *testClock
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-0123456789abcdef0123")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.Workers = 4
	cfg.Links.BaseURL = "http://localhost:8000"
	return cfg
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	env := &testEnv{
		mr:     mr,
		rdb:    rdb,
		repo:   users.NewMemoryRepository(),
		mailer: &captureMailer{},
		clock:  &testClock{now: time.Now().Truncate(time.Second)},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserRepository(env.repo).
		WithMailer(env.mailer).
		WithClock(env.clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	env.engine = engine
	return env
}

func signupRequest(email, role string) SignupRequest {
	return SignupRequest{
		Email:     email,
		Username:  strings.Split(email, "@")[0],
		FirstName: "Test",
		LastName:  "User",
		Password:  testPassword,
		Role:      role,
	}
}

// linkToken pulls the token that follows path out of a rendered email.
func linkToken(t *testing.T, msg mail.Message, path string) string {
	t.Helper()
	i := strings.Index(msg.HTML, path)
	if i < 0 {
		t.Fatalf("email has no %s link:\n%s", path, msg.HTML)
	}
	rest := msg.HTML[i+len(path):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("unterminated link in email:\n%s", msg.HTML)
	}
	return rest[:end]
}

// signup registers email through the public flow and then promotes it to
// role through the directory, the way an operator grants admin.
func (env *testEnv) signup(t *testing.T, email, role string) *users.User {
	t.Helper()
	ctx := context.Background()
	u, err := env.engine.Signup(ctx, signupRequest(email, ""))
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", email, err)
	}
	if role == "" || role == users.RoleUser {
		return u
	}
	u, err = env.engine.Users().Update(ctx, u.UID, users.Patch{Role: &role})
	if err != nil {
		t.Fatalf("promote %s to %s failed: %v", email, role, err)
	}
	return u
}

// signupVerified registers a user and redeems the verification link.
func (env *testEnv) signupVerified(t *testing.T, email, role string) *users.User {
	t.Helper()
	env.signup(t, email, role)
	token := linkToken(t, env.mailer.last(t), verifyPath)
	u, err := env.engine.VerifyEmail(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyEmail(%s) failed: %v", email, err)
	}
	return u
}

func (env *testEnv) login(t *testing.T, email string) *LoginResult {
	t.Helper()
	res, err := env.engine.Login(context.Background(), LoginRequest{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", email, err)
	}
	return res
}

func bearer(token string) string {
	return "Bearer " + token
}
