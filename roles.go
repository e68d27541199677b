package bloombox

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/users"
)

// RoleChecker is an allow-set of roles declared per route.
type RoleChecker struct {
	Allowed []string
}

// NewRoleChecker returns a checker allowing exactly roles.
func NewRoleChecker(roles ...string) RoleChecker {
	allowed := make([]string, len(roles))
	copy(allowed, roles)
	return RoleChecker{Allowed: allowed}
}

// Allows reports whether role is in the allow-set.
func (rc RoleChecker) Allows(role string) bool {
	for _, r := range rc.Allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CheckRole resolves the caller behind access-token claims and enforces rc.
// Verification is checked before the role, so an unverified admin gets
// ErrAccountNotVerified rather than a permission error.
func (e *Engine) CheckRole(ctx context.Context, claims *jwt.Claims, rc RoleChecker) (*users.User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	user, err := e.checkRole(ctx, claims, rc)
	if err != nil {
		return nil, e.rejected(err)
	}
	return user, nil
}

func (e *Engine) checkRole(ctx context.Context, claims *jwt.Claims, rc RoleChecker) (*users.User, error) {
	if claims == nil {
		return nil, ErrInvalidToken
	}
	if claims.Refresh {
		return nil, ErrAccessTokenRequired
	}

	user, err := e.resolveUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrAccountNotVerified
	}
	if !rc.Allows(user.Role) {
		return nil, ErrInsufficientPermission
	}
	return user, nil
}

// resolveUser looks the claims' user up by email, falling back to user_uid.
func (e *Engine) resolveUser(ctx context.Context, claims *jwt.Claims) (*users.User, error) {
	var (
		user *users.User
		err  error
	)
	switch {
	case claims.User.Email != "":
		user, err = e.users.GetByEmail(ctx, claims.User.Email)
	case claims.User.UserUID != "":
		user, err = e.users.GetByUID(ctx, claims.User.UserUID)
	default:
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, users.ErrDuplicateEmail):
		return ErrUserAlreadyExists
	default:
		return fmt.Errorf("user directory: %w", err)
	}
}
