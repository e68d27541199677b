package server

import (
	"fmt"
	"net/http"

	"github.com/MrEthical07/bloombox"
	"github.com/MrEthical07/bloombox/middleware"
	"github.com/MrEthical07/bloombox/users"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// APIPrefix is the mount point of every route but /metrics.
const APIPrefix = "/api/v1"

type route struct {
	name    string
	method  string
	pattern string
	handler http.HandlerFunc
	guard   func(http.Handler) http.Handler
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusNotFound, middleware.ErrorBody{ErrorCode: "not_found", Message: "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusMethodNotAllowed, middleware.ErrorBody{ErrorCode: "method_not_allowed", Message: "Method not allowed"})
	})

	anyone := bloombox.NewRoleChecker(users.RoleAdmin, users.RoleUser)
	admins := bloombox.NewRoleChecker(users.RoleAdmin)

	access := middleware.RequireAccess(s.engine)
	refresh := middleware.RequireRefresh(s.engine)
	roles := func(rc bloombox.RoleChecker) func(http.Handler) http.Handler {
		return middleware.RequireRoles(s.engine, rc)
	}

	routes := []route{
		{"Health", http.MethodGet, "/health", s.health, nil},
		{"Ready", http.MethodGet, "/ready", s.ready, nil},

		{"Signup", http.MethodPost, "/auth/signup", s.signup, nil},
		{"Login", http.MethodPost, "/auth/login", s.login, nil},
		{"RefreshToken", http.MethodGet, "/auth/refresh_token", s.refreshToken, refresh},
		{"Logout", http.MethodPost, "/auth/logout", s.logout, access},
		{"LogoutRefresh", http.MethodPost, "/auth/logout/refresh", s.logoutRefresh, refresh},
		{"Me", http.MethodGet, "/auth/me", s.me, roles(anyone)},
		{"Verify", http.MethodGet, "/auth/verify/{token}", s.verify, nil},
		{"ResendVerification", http.MethodPost, "/auth/resend-verification", s.resendVerification, nil},
		{"PasswordResetRequest", http.MethodPost, "/auth/password-reset-request", s.passwordResetRequest, nil},
		{"PasswordResetConfirm", http.MethodPost, "/auth/password-reset-confirm/{token}", s.passwordResetConfirm, nil},

		{"ListUsers", http.MethodGet, "/users", s.listUsers, roles(admins)},
		{"DeleteUser", http.MethodDelete, "/users/{uid}", s.deleteUser, roles(admins)},
	}

	api := router.PathPrefix(APIPrefix).Subrouter()
	for _, rt := range routes {
		var h http.Handler = rt.handler
		if rt.guard != nil {
			h = rt.guard(h)
		}
		api.Methods(rt.method).Path(rt.pattern).Name(rt.name).Handler(h)
	}

	router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(s.metrics.Handler())

	return router
}

// wrap applies the request middleware around the whole router, so 404 and
// 405 responses get a request id, a log line and a metric too.
func (s *Server) wrap(router http.Handler) http.Handler {
	h := s.recoverer(router)
	h = middleware.Metrics(s.metrics, s.routeTemplate)(h)
	h = middleware.Logger(s.log)(h)
	h = middleware.ClientIP(s.opts.TrustProxy)(h)
	return middleware.RequestID(h)
}

// routeTemplate labels requests by their mux pattern so ids and tokens do
// not explode metric cardinality. The middleware runs outside the router,
// so the route is matched again here.
func (s *Server) routeTemplate(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil && match.MatchErr == nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func corsHandler(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(h)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error(r.Context(), "handler panic", "panic", rec)
				middleware.WriteError(w, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
