// Package metrics counts session operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for auth attempts.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeSuperseded = "superseded"
)

// Collector holds the session metrics. A nil *Collector records nothing.
type Collector struct {
	authAttempts *prometheus.CounterVec
	authDuration *prometheus.HistogramVec
	restores     *prometheus.CounterVec
}

// NewCollector registers the metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		authAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerophilia_auth_attempts_total",
				Help: "Auth operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		authDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aerophilia_auth_duration_seconds",
				Help:    "Latency of auth calls to the festival API",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"operation"},
		),
		restores: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerophilia_session_restores_total",
				Help: "Session restores from durable storage by result",
			},
			[]string{"result"},
		),
	}
}

// TrackAuth records one auth operation.
func (c *Collector) TrackAuth(operation, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.authAttempts.WithLabelValues(operation, outcome).Inc()
	c.authDuration.WithLabelValues(operation).Observe(took.Seconds())
}

// TrackRestore records the result of reading the stored session.
func (c *Collector) TrackRestore(result string) {
	if c == nil {
		return
	}
	c.restores.WithLabelValues(result).Inc()
}
