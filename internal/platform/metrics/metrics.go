package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the request-matching counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	AcceptAttempts    prometheus.Counter
	AcceptSuccesses   prometheus.Counter
	AcceptConflicts   prometheus.Counter
	RequestsCreated   prometheus.Counter
	RequestsCancelled prometheus.Counter
	RequestsRejected  prometheus.Counter
	LoginFailures     prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AcceptAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_request_accept_attempts_total",
			Help: "Total number of accept calls made by providers",
		}),
		AcceptSuccesses: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_request_accept_successes_total",
			Help: "Total number of requests accepted",
		}),
		AcceptConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_request_accept_conflicts_total",
			Help: "Total number of accept calls that found the request no longer available",
		}),
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_requests_created_total",
			Help: "Total number of service requests created",
		}),
		RequestsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_requests_cancelled_total",
			Help: "Total number of service requests cancelled by customers",
		}),
		RequestsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_requests_rejected_total",
			Help: "Total number of service requests rejected by providers",
		}),
		LoginFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ustaad_auth_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
	}
}

func (m *Metrics) IncrementAcceptAttempts() {
	if m != nil {
		m.AcceptAttempts.Inc()
	}
}

func (m *Metrics) IncrementAcceptSuccesses() {
	if m != nil {
		m.AcceptSuccesses.Inc()
	}
}

func (m *Metrics) IncrementAcceptConflicts() {
	if m != nil {
		m.AcceptConflicts.Inc()
	}
}

func (m *Metrics) IncrementRequestsCreated() {
	if m != nil {
		m.RequestsCreated.Inc()
	}
}

func (m *Metrics) IncrementRequestsCancelled() {
	if m != nil {
		m.RequestsCancelled.Inc()
	}
}

func (m *Metrics) IncrementRequestsRejected() {
	if m != nil {
		m.RequestsRejected.Inc()
	}
}

func (m *Metrics) IncrementLoginFailures() {
	if m != nil {
		m.LoginFailures.Inc()
	}
}
