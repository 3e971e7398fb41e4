// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carti_assistant"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Send cycle metrics
	SendsAccepted prometheus.Counter
	SendsRejected prometheus.Counter
	SendsFailed   prometheus.Counter

	// Remote assistant metrics
	AskLatency *prometheus.HistogramVec

	// Transcript store metrics
	StoreSaveErrors prometheus.Counter
	StoreLoadErrors prometheus.Counter

	// Widget channel metrics
	WidgetConnections prometheus.Gauge
}

// Default is the global metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SendsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_accepted_total",
			Help:      "Total number of accepted send operations",
		}),
		SendsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_rejected_total",
			Help:      "Total number of sends rejected while a reply was in flight",
		}),
		SendsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_failed_total",
			Help:      "Total number of sends that ended in a failure notice",
		}),
		AskLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_latency_seconds",
			Help:      "Latency of remote assistant exchanges in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
		StoreSaveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_save_errors_total",
			Help:      "Total number of swallowed transcript save failures",
		}),
		StoreLoadErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_load_errors_total",
			Help:      "Total number of transcript load failures treated as missing",
		}),
		WidgetConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "widget_connections_active",
			Help:      "Number of active widget websocket connections",
		}),
	}
}

// RecordAsk records one remote assistant exchange.
func (m *Metrics) RecordAsk(err error, latencySeconds float64) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.SendsFailed.Inc()
	}
	m.AskLatency.WithLabelValues(outcome).Observe(latencySeconds)
}
