// Package metrics defines the Prometheus instrumentation for the hunt
// schedulers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts scheduler ticks by component and outcome.
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntbot_ticks_total",
			Help: "Scheduler ticks by component and status",
		},
		[]string{"component", "status"},
	)

	// TickDuration tracks per-component tick latency in seconds.
	TickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huntbot_tick_duration_seconds",
			Help:    "Tick duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"component"},
	)

	// RunnerRestarts counts watchdog restarts of crashed runners.
	RunnerRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntbot_runner_restarts_total",
			Help: "Watchdog restarts by component",
		},
		[]string{"component"},
	)

	// SheetRefreshes counts sheet grid refreshes by status.
	SheetRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntbot_sheet_refreshes_total",
			Help: "Sheet refresh attempts by status",
		},
		[]string{"status"},
	)
)
