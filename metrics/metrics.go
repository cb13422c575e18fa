// ABOUTME: Prometheus instrumentation for the retraining scheduler
// ABOUTME: Counters and gauges for periods, failures, retirements, and per-job allocations

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counters
	PeriodsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "continua_periods_total",
			Help: "Total retraining periods executed",
		},
		[]string{"policy"},
	)

	ProfilingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "continua_profiling_failures_total",
			Help: "Total per-job profiling failures recovered via flat-curve fallback",
		},
	)

	TransientFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "continua_transient_failures_total",
			Help: "Total per-job periods lost to transient execution failures",
		},
	)

	JobsRetiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "continua_jobs_retired_total",
			Help: "Total jobs retired from active scheduling",
		},
		[]string{"reason"}, // completed, permanent, failure_streak
	)

	// Gauges
	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "continua_active_jobs",
			Help: "Jobs currently in active scheduling",
		},
	)

	JobAllocation = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "continua_job_allocation_gpus",
			Help: "Committed per-job allocation for the current period in GPU units",
		},
		[]string{"job", "mode"}, // mode: training, inference
	)

	PlanUtility = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "continua_plan_estimated_utility",
			Help: "Estimated total accuracy gain of the committed plan",
		},
	)

	JobBacklog = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "continua_job_backlog_units",
			Help: "Pending inference units per job",
		},
		[]string{"job"},
	)
)
