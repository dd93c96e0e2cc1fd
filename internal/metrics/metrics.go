package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the clubhive server.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Auth and rate limiting.
	AuthFailuresTotal        *prometheus.CounterVec
	AuthSuccessesTotal       *prometheus.CounterVec
	RateLimitRejectionsTotal *prometheus.CounterVec

	// Ledgers.
	MembershipDecisionsTotal   *prometheus.CounterVec
	AttendanceTransitionsTotal *prometheus.CounterVec
	PointsAwardedTotal         prometheus.Counter
	PointsRevokedTotal         prometheus.Counter

	// Activity log.
	ActivityEntriesTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubhive_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		HTTPResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubhive_http_response_size_bytes",
			Help:    "HTTP response size in bytes.",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "path_pattern"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"reason"}),

		AuthSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_auth_successes_total",
			Help: "Total number of successful logins and registrations.",
		}, []string{"kind"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}, []string{"route"}),

		MembershipDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_membership_decisions_total",
			Help: "Total number of membership approvals and rejections.",
		}, []string{"status"}),

		AttendanceTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhive_attendance_transitions_total",
			Help: "Total number of attendance status changes.",
		}, []string{"from", "to"}),

		PointsAwardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhive_points_awarded_total",
			Help: "Points credited for attendance.",
		}),

		PointsRevokedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhive_points_revoked_total",
			Help: "Points debited when attendance was withdrawn.",
		}),

		ActivityEntriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clubhive_activity_entries_total",
			Help: "Total number of activity entries recorded.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clubhive_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.RateLimitRejectionsTotal,
		m.MembershipDecisionsTotal,
		m.AttendanceTransitionsTotal,
		m.PointsAwardedTotal,
		m.PointsRevokedTotal,
		m.ActivityEntriesTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, pattern string, status int, duration time.Duration, bytes int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pattern).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, pattern).Observe(float64(bytes))
}

// IncAuthFailure increments the auth failure counter for the given reason.
func (m *Metrics) IncAuthFailure(reason string) {
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// IncAuthSuccess increments the auth success counter for login or register.
func (m *Metrics) IncAuthSuccess(kind string) {
	m.AuthSuccessesTotal.WithLabelValues(kind).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection(route string) {
	m.RateLimitRejectionsTotal.WithLabelValues(route).Inc()
}

// IncMembershipDecision counts an approval or rejection.
func (m *Metrics) IncMembershipDecision(status string) {
	m.MembershipDecisionsTotal.WithLabelValues(status).Inc()
}

// ObserveAttendance records an attendance change and the points it moved.
func (m *Metrics) ObserveAttendance(from, to string, delta int) {
	m.AttendanceTransitionsTotal.WithLabelValues(from, to).Inc()
	switch {
	case delta > 0:
		m.PointsAwardedTotal.Add(float64(delta))
	case delta < 0:
		m.PointsRevokedTotal.Add(float64(-delta))
	}
}

// IncActivity counts one recorded activity entry.
func (m *Metrics) IncActivity() {
	m.ActivityEntriesTotal.Inc()
}
