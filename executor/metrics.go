package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the executor's prometheus collectors.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "termite",
			Name:      "runs_total",
			Help:      "Snippet runs by language and outcome.",
		}, []string{"lang", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "termite",
			Name:      "run_duration_seconds",
			Help:      "Snippet run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"lang"}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration)
	}
	return m
}

// observe records one run. outcome is "ok" or the failure kind.
func (m *Metrics) observe(lang, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(lang, outcome).Inc()
	m.duration.WithLabelValues(lang).Observe(d.Seconds())
}
