// Package metrics exports compilation counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Compiles counts Compile calls by result: ok, rejected, failed.
	Compiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slowjit_compiles_total",
		Help: "Compile calls by result",
	}, []string{"result"})

	// PlaybackContexts counts constructed playback contexts.
	PlaybackContexts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slowjit_playback_contexts_total",
		Help: "Playback contexts constructed",
	})

	ActivePlaybacks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slowjit_active_playbacks",
		Help: "Playback contexts currently holding the backend",
	})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slowjit_phase_duration_seconds",
		Help:    "Compilation phase duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	}, []string{"phase"})
)

// Since observes the time passed since start for phase.
func Since(phase string, start time.Time) time.Duration {
	d := time.Since(start)

	PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())

	return d
}
