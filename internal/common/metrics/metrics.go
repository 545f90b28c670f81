// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SpecialistRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specialist_runs_completed_total",
			Help: "Total number of specialist runs completed",
		},
		[]string{"category"},
	)

	SpecialistRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specialist_runs_failed_total",
			Help: "Total number of specialist runs failed",
		},
		[]string{"category", "error_code"},
	)

	SpecialistRunsDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "specialist_runs_degraded_total",
			Help: "Total number of specialist runs that degraded after retry",
		},
		[]string{"category"},
	)

	SpecialistRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "specialist_run_duration_seconds",
			Help: "Duration of specialist run processing in seconds",
		},
		[]string{"category"},
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_turns_total",
			Help: "Total number of advisory turns processed",
		},
		[]string{"status"},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "advisor_turn_duration_seconds",
			Help: "Duration of a full advisory turn in seconds",
		},
	)
)
