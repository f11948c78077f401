package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Credential metrics
	LoginAttemptsTotal *prometheus.CounterVec
	TokenRefreshTotal  *prometheus.CounterVec
	AuthFailuresTotal  *prometheus.CounterVec
	AuthzDenialsTotal  *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec

	// Lifecycle metrics
	UsersDeletedTotal  prometheus.Counter
	TasksCascadedTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_token_refresh_total",
				Help: "Access token refreshes by outcome",
			},
			[]string{"outcome"},
		),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_authentication_failures_total",
				Help: "Rejected request credentials by reason",
			},
			[]string{"reason"},
		),
		AuthzDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_authorization_denials_total",
				Help: "Requests rejected by a role policy",
			},
			[]string{"role"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_registrations_total",
				Help: "Signups by outcome (created, reactivated, conflict, error)",
			},
			[]string{"outcome"},
		),
		UsersDeletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workboard_users_deleted_total",
				Help: "Users moved to DELETED status",
			},
		),
		TasksCascadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workboard_tasks_cascade_deleted_total",
				Help: "Tasks removed by user deletion cascades",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginAttemptsTotal,
		m.TokenRefreshTotal,
		m.AuthFailuresTotal,
		m.AuthzDenialsTotal,
		m.RegistrationsTotal,
		m.UsersDeletedTotal,
		m.TasksCascadedTotal,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome labels shared by the counters.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeCreated     = "created"
	OutcomeReactivated = "reactivated"
	OutcomeConflict    = "conflict"
	OutcomeError       = "error"
)

// The helpers below tolerate a nil receiver so components can run without
// metrics in tests.

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.TokenRefreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveAuthzDenial(role string) {
	if m == nil {
		return
	}
	m.AuthzDenialsTotal.WithLabelValues(role).Inc()
}

func (m *Metrics) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUserDeleted(cascadedTasks int64) {
	if m == nil {
		return
	}
	m.UsersDeletedTotal.Inc()
	m.TasksCascadedTotal.Add(float64(cascadedTasks))
}
