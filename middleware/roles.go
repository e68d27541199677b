package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/bloombox"
)

// RequireRoles enforces rc on the caller. Access-token claims already in the
// context are reused; otherwise the access guard runs first. The resolved
// user is available through [UserFromContext].
func RequireRoles(engine *bloombox.Engine, rc bloombox.RoleChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())

			user, err := engine.CheckRole(r.Context(), claims, rc)
			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})

		guarded := RequireAccess(engine)(check)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := ClaimsFromContext(r.Context()); ok && !claims.Refresh {
				check.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
