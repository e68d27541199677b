package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/jwt"
	"github.com/MrEthical07/bloombox/users"
)

type claimsContextKey struct{}

type userContextKey struct{}

// ClaimsFromContext returns the claims stored by a guard.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// UserFromContext returns the directory record stored by [RequireRoles].
func UserFromContext(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*users.User)
	return u, ok && u != nil
}

// Guard authenticates the bearer token for kind and stores its claims in the
// request context.
func Guard(engine *bloombox.Engine, kind bloombox.TokenKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, bloombox.ErrEngineNotReady)
				return
			}

			claims, err := engine.Authenticate(r.Context(), r.Header.Get("Authorization"), kind)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAccess accepts only access tokens.
func RequireAccess(engine *bloombox.Engine) func(http.Handler) http.Handler {
	return Guard(engine, bloombox.AccessToken)
}

// RequireRefresh accepts only refresh tokens.
func RequireRefresh(engine *bloombox.Engine) func(http.Handler) http.Handler {
	return Guard(engine, bloombox.RefreshToken)
}
