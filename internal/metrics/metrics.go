// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion counts pipeline outcomes. A nil *Ingestion is valid and records nothing.
type Ingestion struct {
	messages     *prometheus.CounterVec
	fetchedBytes prometheus.Counter
	stageLatency *prometheus.HistogramVec
}

// NewIngestion creates the collectors and registers them on reg.
func NewIngestion(reg prometheus.Registerer) (*Ingestion, error) {
	m := &Ingestion{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docbridge_messages_total",
				Help: "Queue messages processed, labeled by outcome and the stage it ended in.",
			},
			[]string{"outcome", "stage"},
		),
		fetchedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docbridge_fetched_bytes_total",
				Help: "Bytes downloaded from source URLs.",
			},
		),
		stageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docbridge_stage_duration_seconds",
				Help:    "Duration of each pipeline stage.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{m.messages, m.fetchedBytes, m.stageLatency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Outcome records one finished message.
func (m *Ingestion) Outcome(outcome, stage string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome, stage).Inc()
}

// Fetched adds n downloaded bytes.
func (m *Ingestion) Fetched(n int) {
	if m == nil {
		return
	}
	m.fetchedBytes.Add(float64(n))
}

// Stage observes the duration of one stage in seconds.
func (m *Ingestion) Stage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(seconds)
}
