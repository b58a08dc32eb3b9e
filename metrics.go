package gospy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes used as metric label values.
const (
	outcomeOK      = "ok"
	outcomeFaked   = "faked"
	outcomeError   = "error"
	outcomePanic   = "panic"
	dataEventWrite = "write"
	dataEventDel   = "delete"
)

// Metrics holds Prometheus metrics for wrapped targets.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	callsTotal       *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	dataEventsTotal  *prometheus.CounterVec
	failuresCaptured *prometheus.CounterVec
	registry         *prometheus.Registry
}

// NewMetrics creates metrics registered on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gospy"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of intercepted operation calls",
		},
		[]string{"target", "operation", "outcome"},
	)

	m.callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of intercepted operation calls in seconds",
			Buckets: []float64{
				.00001, .0001, .001, .005, .01,
				.05, .1, .5, 1, 5,
			},
		},
		[]string{"target", "operation"},
	)

	m.dataEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_events_total",
			Help:      "Total number of data member writes and deletes",
		},
		[]string{"target", "member", "event"},
	)

	m.failuresCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_captured_total",
			Help:      "Total number of failures stored as the last failure",
		},
		[]string{"target"},
	)

	m.registry.MustRegister(
		m.callsTotal,
		m.callDuration,
		m.dataEventsTotal,
		m.failuresCaptured,
	)

	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeCall(target, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(target, operation, outcome).Inc()
	m.callDuration.WithLabelValues(target, operation).Observe(elapsed.Seconds())
}

func (m *Metrics) observeData(target, member, event string) {
	if m == nil {
		return
	}
	m.dataEventsTotal.WithLabelValues(target, member, event).Inc()
}

func (m *Metrics) observeFailure(target string) {
	if m == nil {
		return
	}
	m.failuresCaptured.WithLabelValues(target).Inc()
}
