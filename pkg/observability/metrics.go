// Package observability provides Prometheus metrics for the triage
// pipeline. Metrics are optional at every call site: a nil *Metrics is
// safe to use and records nothing, so the pipeline never blocks or fails
// on the metrics boundary.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the triage pipeline.
type Metrics struct {
	// ItemsProcessedTotal counts pipeline invocations by outcome.
	ItemsProcessedTotal *prometheus.CounterVec

	// EscalationsTotal counts items the pipeline decided to escalate.
	EscalationsTotal prometheus.Counter

	// StageSeconds tracks per-stage latency.
	StageSeconds *prometheus.HistogramVec

	// SentimentTotal counts processed items by sentiment label.
	SentimentTotal *prometheus.CounterVec
}

// DefaultMetrics creates metrics registered on the default registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ItemsProcessedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_items_processed_total",
				Help: "Total feedback items processed by the pipeline",
			},
			[]string{"status"},
		),
		EscalationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "triage_escalations_total",
				Help: "Total feedback items escalated for human handling",
			},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "triage_stage_seconds",
				Help:    "Analysis stage latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"stage"},
		),
		SentimentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_sentiment_total",
				Help: "Processed feedback items by sentiment label",
			},
			[]string{"label"},
		),
	}
}

// IncProcessed records one pipeline invocation with the given outcome
// ("ok" or "error").
func (m *Metrics) IncProcessed(status string) {
	if m == nil {
		return
	}
	m.ItemsProcessedTotal.WithLabelValues(status).Inc()
}

// IncEscalation records one escalated item.
func (m *Metrics) IncEscalation() {
	if m == nil {
		return
	}
	m.EscalationsTotal.Inc()
}

// ObserveStage records the latency of one stage invocation.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// IncSentiment records the sentiment label of one processed item.
func (m *Metrics) IncSentiment(label string) {
	if m == nil {
		return
	}
	m.SentimentTotal.WithLabelValues(label).Inc()
}
