package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/bloombox/internal/logging"
	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-test-secret-test-secret")

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:        testSecret,
		SigningMethod: MethodHS256,
		RefreshTTL:    7 * 24 * time.Hour,
	}, logging.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return m
}

var alice = UserClaims{Email: "alice@example.com", UserUID: "7f4e0c3a-1d2b-4c5e-9f80-123456789abc", Role: "user"}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, refresh := range []bool{false, true} {
		token, err := m.Issue(alice, refresh, 0)
		if err != nil {
			t.Fatalf("Issue(refresh=%v) error: %v", refresh, err)
		}

		claims := m.Verify(ctx, token)
		if claims == nil {
			t.Fatalf("Verify(refresh=%v) returned nil", refresh)
		}
		if claims.User != alice {
			t.Fatalf("expected user %+v, got %+v", alice, claims.User)
		}
		if claims.Refresh != refresh {
			t.Fatalf("expected refresh=%v, got %v", refresh, claims.Refresh)
		}
		if claims.JTI() == "" {
			t.Fatal("expected jti to be set")
		}
	}
}

func TestIssueDefaultExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := newTestManager(t, WithClock(func() time.Time { return now }))

	access, err := m.Issue(alice, false, 0)
	if err != nil {
		t.Fatalf("Issue access error: %v", err)
	}
	refresh, err := m.Issue(alice, true, 0)
	if err != nil {
		t.Fatalf("Issue refresh error: %v", err)
	}
	custom, err := m.Issue(alice, false, 5*time.Minute)
	if err != nil {
		t.Fatalf("Issue custom error: %v", err)
	}

	tests := []struct {
		token string
		want  time.Duration
	}{
		{access, DefaultAccessTTL},
		{refresh, 7 * 24 * time.Hour},
		{custom, 5 * time.Minute},
	}
	for _, tc := range tests {
		claims, err := m.Parse(tc.token)
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if got := claims.Remaining(now); got != tc.want {
			t.Fatalf("expected remaining %s, got %s", tc.want, got)
		}
	}
}

func TestJTIUnique(t *testing.T) {
	m := newTestManager(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := m.Issue(alice, false, 0)
		if err != nil {
			t.Fatalf("Issue error: %v", err)
		}
		jti := m.Verify(context.Background(), token).JTI()
		if seen[jti] {
			t.Fatalf("duplicate jti %s", jti)
		}
		seen[jti] = true
	}
}

func TestVerifyExpiredReturnsNil(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	past := newTestManager(t, WithClock(func() time.Time { return issuedAt }))

	token, err := past.Issue(alice, false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if claims := newTestManager(t).Verify(context.Background(), token); claims != nil {
		t.Fatalf("expected nil for expired token, got %+v", claims)
	}
}

func TestVerifyTamperedReturnsNil(t *testing.T) {
	m := newTestManager(t)
	token, err := m.Issue(alice, false, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for i := 0; i < len(token); i++ {
		b := []byte(token)
		b[i] ^= 0x01
		if claims := m.Verify(context.Background(), string(b)); claims != nil {
			t.Fatalf("flipping byte %d produced claims %+v", i, claims)
		}
	}
}

func TestVerifyRejectsWrongSecretAndAlgorithm(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	other, err := NewManager(Config{Secret: []byte("another-secret"), SigningMethod: MethodHS256}, nil)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	forged, err := other.Issue(alice, false, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if m.Verify(ctx, forged) != nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}

	hs512, err := NewManager(Config{Secret: testSecret, SigningMethod: MethodHS512}, nil)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	downgraded, err := hs512.Issue(alice, false, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if m.Verify(ctx, downgraded) != nil {
		t.Fatal("expected token with another algorithm to be rejected")
	}

	unsigned, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, Claims{
		User: alice,
		RegisteredClaims: gjwt.RegisteredClaims{
			ID:        "jti-none",
			ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if m.Verify(ctx, unsigned) != nil {
		t.Fatal("expected alg=none token to be rejected")
	}
}

func TestParseRequiresJTIAndExpiry(t *testing.T) {
	m := newTestManager(t)

	sign := func(c Claims) string {
		t.Helper()
		s, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, c).SignedString(testSecret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	noJTI := sign(Claims{User: alice, RegisteredClaims: gjwt.RegisteredClaims{
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	if _, err := m.Parse(noJTI); err != ErrMissingJTI {
		t.Fatalf("expected ErrMissingJTI, got %v", err)
	}

	noExp := sign(Claims{User: alice, RegisteredClaims: gjwt.RegisteredClaims{ID: "j1"}})
	if _, err := m.Parse(noExp); err == nil {
		t.Fatal("expected token without exp to be rejected")
	}

	noUser := sign(Claims{RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "j2",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	if _, err := m.Parse(noUser); err != ErrMissingUser {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing secret", Config{SigningMethod: MethodHS256}},
		{"unsupported method", Config{Secret: testSecret, SigningMethod: "RS256"}},
		{"negative ttl", Config{Secret: testSecret, AccessTTL: -time.Second}},
		{"leeway too large", Config{Secret: testSecret, Leeway: time.Hour}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewManager(tc.cfg, nil); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func FuzzVerify(f *testing.F) {
	m, err := NewManager(Config{Secret: testSecret}, nil)
	if err != nil {
		f.Fatal(err)
	}
	valid, err := m.Issue(alice, false, 0)
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0.e30.")

	f.Fuzz(func(t *testing.T, token string) {
		claims := m.Verify(context.Background(), token)
		if claims != nil && token != valid {
			t.Fatalf("unexpected claims for fuzzed token %q", token)
		}
	})
}
