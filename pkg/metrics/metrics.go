// Package metrics provides Prometheus instrumentation for framepull components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for framepull components.
// Components accept a *Registry through their Config; a nil registry disables
// instrumentation for that component.
type Registry struct {
	// Buffer metrics
	BufferWrites  *prometheus.CounterVec
	BufferReads   *prometheus.CounterVec
	BufferDropped *prometheus.CounterVec
	BufferDepth   *prometheus.GaugeVec
	GateWaits     *prometheus.CounterVec

	// On-demand pull metrics
	PullFetches *prometheus.CounterVec
	PullStops   *prometheus.CounterVec
	PullErrors  *prometheus.CounterVec

	// Task scope metrics
	TasksSpawned   *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksStopped   *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		BufferWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "buffer",
				Name:      "writes_total",
				Help:      "Total number of items written to buffers",
			},
			[]string{"buffer_name"},
		),

		BufferReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "buffer",
				Name:      "reads_total",
				Help:      "Total number of items consumed from buffers",
			},
			[]string{"buffer_name"},
		),

		BufferDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "buffer",
				Name:      "dropped_total",
				Help:      "Total number of items discarded by write-after-finish policy",
			},
			[]string{"buffer_name"},
		),

		BufferDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "framepull",
				Subsystem: "buffer",
				Name:      "depth",
				Help:      "Current number of buffered items",
			},
			[]string{"buffer_name"},
		),

		GateWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "buffer",
				Name:      "gate_waits_total",
				Help:      "Total number of producer waits on a closed write gate",
			},
			[]string{"buffer_name"},
		),

		PullFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "pull",
				Name:      "fetches_total",
				Help:      "Total number of on-demand provider fetches",
			},
			[]string{"source_name"},
		),

		PullStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "pull",
				Name:      "stops_total",
				Help:      "Total number of sequences terminated by the stop predicate",
			},
			[]string{"source_name"},
		),

		PullErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "pull",
				Name:      "errors_total",
				Help:      "Total number of provider or stop-predicate failures",
			},
			[]string{"source_name"},
		),

		TasksSpawned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "scope",
				Name:      "tasks_spawned_total",
				Help:      "Total number of tasks spawned into scopes",
			},
			[]string{"scope_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "scope",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks completed successfully",
			},
			[]string{"scope_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "scope",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that returned an error",
			},
			[]string{"scope_name"},
		),

		TasksStopped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "framepull",
				Subsystem: "scope",
				Name:      "tasks_stopped_total",
				Help:      "Total number of tasks unwound by a cooperative stop",
			},
			[]string{"scope_name"},
		),
	}
}
