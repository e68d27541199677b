package bloombox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/revocation"
)

// TokenKind selects which session token a route accepts.
type TokenKind int

const (
	// AccessToken accepts only tokens issued with refresh=false.
	AccessToken TokenKind = iota
	// RefreshToken accepts only tokens issued with refresh=true.
	RefreshToken
)

func (k TokenKind) String() string {
	switch k {
	case AccessToken:
		return "access"
	case RefreshToken:
		return "refresh"
	default:
		return "unknown"
	}
}

// check is the only step that differs between the guard variants.
func (k TokenKind) check(claims *jwt.Claims) error {
	switch k {
	case AccessToken:
		if claims.Refresh {
			return ErrAccessTokenRequired
		}
	case RefreshToken:
		if !claims.Refresh {
			return ErrRefreshTokenRequired
		}
	default:
		return ErrInvalidToken
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate runs the bearer guard on an Authorization header value:
// extract, verify signature and expiry, reject revoked identifiers, then
// enforce the access/refresh constraint of kind.
func (e *Engine) Authenticate(ctx context.Context, authorization string, kind TokenKind) (*jwt.Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	token, ok := BearerToken(authorization)
	if !ok {
		return nil, e.rejected(ErrInvalidToken)
	}

	return e.AuthenticateToken(ctx, token, kind)
}

// AuthenticateToken is Authenticate for a bare token string.
func (e *Engine) AuthenticateToken(ctx context.Context, token string, kind TokenKind) (*jwt.Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	claims, err := e.authenticate(ctx, token, kind)
	if err != nil {
		return nil, e.rejected(err)
	}
	return claims, nil
}

func (e *Engine) authenticate(ctx context.Context, token string, kind TokenKind) (*jwt.Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := e.jwt.Verify(ctx, token)
	if claims == nil {
		return nil, ErrInvalidToken
	}

	revoked, err := e.revoked.IsRevoked(ctx, claims.JTI())
	if err != nil {
		e.log.Error(ctx, "revocation lookup failed", "error", err)
		return nil, mapRevocationErr(err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	if err := kind.check(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// rejected counts a guard failure by its error code.
func (e *Engine) rejected(err error) error {
	e.metrics.GuardRejected(ErrorInfo(err).Code)
	return err
}

func mapRevocationErr(err error) error {
	if errors.Is(err, revocation.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return err
}
