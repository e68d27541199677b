package bloombox

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/bloombox/internal/rate"
	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
)

// Login checks credentials and issues an access/refresh token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller: both cost
// one Argon2 verification and return ErrInvalidCredentials.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return nil, newInputError(err)
	}

	email := normalizeEmail(req.Email)
	ip := clientIPFromContext(ctx)

	if err := e.throttle.checkLogin(ctx, email, ip); err != nil {
		return nil, e.mapLoginRateErr(ctx, err)
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, mapUserErr(err)
	}

	hash := e.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	ok, err := e.verifyPassword(ctx, req.Password, hash)
	if err != nil {
		return nil, err
	}
	if user == nil || !ok {
		e.metrics.Inc(metrics.EventLoginFailure)
		if err := e.throttle.failedLogin(ctx, email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
			e.log.Warn(ctx, "login throttle update failed", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := e.throttle.clearLogin(ctx, email, ip); err != nil {
		e.log.Warn(ctx, "login throttle reset failed", "error", err)
	}

	if e.config.Password.UpgradeOnLogin && e.hasher.NeedsUpgrade(user.PasswordHash) {
		e.upgradeHash(ctx, user, req.Password)
	}

	access, refresh, err := e.issuePair(user)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(metrics.EventLoginSuccess)
	e.log.Info(ctx, "user logged in", "user_uid", user.UID)

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

func (e *Engine) upgradeHash(ctx context.Context, user *users.User, pw string) {
	newHash, err := e.hashPassword(ctx, pw)
	if err != nil {
		e.log.Warn(ctx, "password rehash failed", "user_uid", user.UID, "error", err)
		return
	}
	updated, err := e.users.Update(ctx, user.UID, users.Patch{PasswordHash: &newHash})
	if err != nil {
		e.log.Warn(ctx, "password rehash not stored", "user_uid", user.UID, "error", err)
		return
	}
	*user = *updated
	e.metrics.Inc(metrics.EventPasswordRehashed)
}

func (e *Engine) mapLoginRateErr(ctx context.Context, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		e.metrics.Inc(metrics.EventLoginRateLimited)
		return ErrLoginRateLimited
	}
	e.log.Error(ctx, "login throttle unavailable", "error", err)
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

func userClaims(u *users.User) jwt.UserClaims {
	return jwt.UserClaims{Email: u.Email, UserUID: u.UID, Role: u.Role}
}

func (e *Engine) issuePair(user *users.User) (string, string, error) {
	access, err := e.jwt.Issue(userClaims(user), false, e.config.JWT.AccessTTL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	refresh, err := e.jwt.Issue(userClaims(user), true, e.config.JWT.RefreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	return access, refresh, nil
}

// RefreshAccess issues a new access token for the user named in valid
// refresh-token claims. The refresh token itself stays valid.
func (e *Engine) RefreshAccess(ctx context.Context, claims *jwt.Claims) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if claims == nil {
		return "", ErrInvalidToken
	}
	if !claims.Refresh {
		return "", ErrRefreshTokenRequired
	}

	if err := e.throttle.refreshed(ctx, claims.JTI()); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			return "", ErrRefreshRateLimited
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	access, err := e.jwt.Issue(claims.User, false, e.config.JWT.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}

	e.metrics.Inc(metrics.EventRefreshSuccess)
	return access, nil
}

// Logout revokes the presented access token for the rest of its life. The
// refresh token issued with it has its own jti and stays valid.
func (e *Engine) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := e.RevokeToken(ctx, claims); err != nil {
		return err
	}
	e.metrics.Inc(metrics.EventLogout)
	return nil
}

// RevokeToken adds the jti of any valid token to the blocklist.
func (e *Engine) RevokeToken(ctx context.Context, claims *jwt.Claims) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if claims == nil || claims.JTI() == "" {
		return ErrInvalidToken
	}

	ttl := claims.Remaining(e.now())
	if err := e.revoked.Revoke(ctx, claims.JTI(), ttl); err != nil {
		e.log.Error(ctx, "token revocation failed", "error", err)
		return mapRevocationErr(err)
	}

	e.metrics.Inc(metrics.EventTokenRevoked)
	e.log.Info(ctx, "token revoked", "user_uid", claims.User.UserUID, "refresh", claims.Refresh)
	return nil
}

// CurrentUser returns the directory record behind the claims.
func (e *Engine) CurrentUser(ctx context.Context, claims *jwt.Claims) (*users.User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if claims == nil {
		return nil, ErrInvalidToken
	}
	return e.resolveUser(ctx, claims)
}
