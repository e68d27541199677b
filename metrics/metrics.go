package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event names an authentication outcome counted in bloombox_auth_events_total.
type Event string

const (
	EventSignup             Event = "signup"
	EventSignupDuplicate    Event = "signup_duplicate"
	EventSignupRoleRejected Event = "signup_role_rejected"
	EventLoginSuccess       Event = "login_success"
	EventLoginFailure       Event = "login_failure"
	EventLoginRateLimited   Event = "login_rate_limited"
	EventPasswordRehashed   Event = "password_rehashed"
	EventRefreshSuccess     Event = "refresh_success"
	EventLogout             Event = "logout"
	EventTokenRevoked       Event = "token_revoked"
	EventEmailVerified      Event = "email_verified"
	EventResetRequested     Event = "password_reset_requested"
	EventResetConfirmed     Event = "password_reset_confirmed"
	EventResetReplay        Event = "password_reset_replay"
	EventUserDeleted        Event = "user_deleted"
)

// Metrics groups the bloombox collectors.
type Metrics struct {
	registry     *prometheus.Registry
	authEvents   *prometheus.CounterVec
	guardRejects *prometheus.CounterVec
	mail         *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	hashLatency  *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloombox_auth_events_total",
			Help: "Authentication flow outcomes.",
		}, []string{"event"}),
		guardRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloombox_guard_rejections_total",
			Help: "Requests rejected by the bearer guard or role checker, by error code.",
		}, []string{"code"}),
		mail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloombox_mail_total",
			Help: "Mail queue outcomes: sent, failed, dropped.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloombox_http_requests_total",
			Help: "HTTP responses by route pattern, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloombox_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		hashLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloombox_password_hash_duration_seconds",
			Help:    "Argon2id hash and verify latency, including time spent waiting for a worker.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.authEvents,
		m.guardRejects,
		m.mail,
		m.httpRequests,
		m.httpLatency,
		m.hashLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Inc counts one auth event.
func (m *Metrics) Inc(event Event) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(string(event)).Inc()
}

// GuardRejected counts a rejected request by its stable error code.
func (m *Metrics) GuardRejected(code string) {
	if m == nil {
		return
	}
	m.guardRejects.WithLabelValues(code).Inc()
}

// MailOutcome counts a mail queue outcome.
func (m *Metrics) MailOutcome(outcome string) {
	if m == nil {
		return
	}
	m.mail.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request. route must be the mux pattern, not
// the raw path.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveHash records a password hash ("hash") or verify ("verify") duration.
func (m *Metrics) ObserveHash(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.hashLatency.WithLabelValues(op).Observe(d.Seconds())
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
