package bloombox

import (
	"context"

	"github.com/MrEthical07/bloombox/internal/rate"
)

// throttle holds the windows the engine enforces. A disabled window has a
// zero Limit and is skipped by the limiter.
type throttle struct {
	limiter *rate.Limiter
	email   rate.Window
	ip      rate.Window
	refresh rate.Window
}

func newThrottle(limiter *rate.Limiter, sec SecurityConfig) throttle {
	t := throttle{
		limiter: limiter,
		email: rate.Window{
			Prefix: rate.LoginEmailPrefix,
			Limit:  sec.MaxLoginAttempts,
			Period: sec.LoginCooldownDuration,
		},
		ip:      rate.Window{Prefix: rate.LoginIPPrefix},
		refresh: rate.Window{Prefix: rate.RefreshPrefix},
	}
	if sec.EnableIPThrottle {
		t.ip.Limit = sec.MaxLoginAttempts
		t.ip.Period = sec.LoginCooldownDuration
	}
	if sec.EnableRefreshThrottle {
		t.refresh.Limit = sec.MaxRefreshAttempts
		t.refresh.Period = sec.RefreshCooldownDuration
	}
	return t
}

// checkLogin fails once either the email or the client IP ran out of
// failed attempts.
func (t throttle) checkLogin(ctx context.Context, email, ip string) error {
	if err := t.limiter.Check(ctx, t.email, email); err != nil {
		return err
	}
	if ip == "" {
		return nil
	}
	return t.limiter.Check(ctx, t.ip, ip)
}

// failedLogin charges both windows even when the first one is already
// over budget.
func (t throttle) failedLogin(ctx context.Context, email, ip string) error {
	err := t.limiter.Hit(ctx, t.email, email)
	if ip == "" {
		return err
	}
	if ipErr := t.limiter.Hit(ctx, t.ip, ip); err == nil {
		err = ipErr
	}
	return err
}

func (t throttle) clearLogin(ctx context.Context, email, ip string) error {
	keys := []string{t.email.Key(email)}
	if ip != "" && t.ip.Enabled() {
		keys = append(keys, t.ip.Key(ip))
	}
	return t.limiter.Clear(ctx, keys...)
}

// refreshed counts one access-token exchange for the refresh token jti.
func (t throttle) refreshed(ctx context.Context, jti string) error {
	return t.limiter.Hit(ctx, t.refresh, jti)
}
