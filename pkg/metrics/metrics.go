package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Action metrics
	ActionOutcomes     *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec

	// Realtime metrics
	RealtimeSessions  prometheus.Gauge
	RealtimeDelivered prometheus.Counter

	// Reconciler metrics
	ReconcilerRuns     prometheus.Counter
	ReconcilerNotified prometheus.Counter
	ReconcilerFailures prometheus.Counter
	ReconcilerLatency  prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
		}, []string{"method", "path", "status"}),
		RequestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		ActionOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_outcomes_total",
			Help:      "Outcomes of form actions by action and result kind",
		}, []string{"action", "outcome"}),
		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed after the primary operation succeeded",
		}, []string{"action", "effect"}),

		RealtimeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_sessions",
			Help:      "Current number of open chat sockets",
		}),
		RealtimeDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_messages_delivered_total",
			Help:      "Messages merged into an open chat thread from the realtime channel",
		}),

		ReconcilerRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_reconciler_runs_total",
			Help:      "Number of bill notification reconciliation passes",
		}),
		ReconcilerNotified: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_reconciler_notified_total",
			Help:      "Bill notifications sent by the reconciler",
		}),
		ReconcilerFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_reconciler_failures_total",
			Help:      "Bill notifications the reconciler failed to send",
		}),
		ReconcilerLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bill_reconciler_duration_seconds",
			Help:      "Time spent in a reconciliation pass",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
