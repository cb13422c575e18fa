// ABOUTME: Period executor driving the PROFILE → ALLOCATE → EXECUTE → COMMIT loop
// ABOUTME: Sole writer of registry state; commits each period atomically

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/continua-ai/continua/backends"
	"github.com/continua-ai/continua/metrics"
	"github.com/continua-ai/continua/models"
)

// ExecutorConfig scales execution and bounds the run.
type ExecutorConfig struct {
	RunID                string
	NumPeriods           int
	Epochs               int // training scale per period, fixed across policies for fairness
	InferenceChunks      int // inference scale per period
	MaxTransientFailures int // consecutive transient periods before retirement, 0 = never
}

// Executor owns the job registry and resource pool for one scheduling run
// and advances periods strictly sequentially: period N+1 never profiles
// before period N commits.
type Executor struct {
	pool     models.ResourcePool
	registry *models.Registry
	profiler *Microprofiler
	policy   Policy
	backend  backends.ModelBackend
	data     backends.DataSource
	cfg      ExecutorConfig

	records []models.PeriodRecord
}

func NewExecutor(
	pool models.ResourcePool,
	registry *models.Registry,
	profiler *Microprofiler,
	policy Policy,
	backend backends.ModelBackend,
	data backends.DataSource,
	cfg ExecutorConfig,
) *Executor {
	return &Executor{
		pool:     pool,
		registry: registry,
		profiler: profiler,
		policy:   policy,
		backend:  backend,
		data:     data,
		cfg:      cfg,
	}
}

// Run executes periods until the configured count, until every job retires,
// or until the context is canceled. The returned records are the ordered
// output log; they cover only fully committed periods.
func (e *Executor) Run(ctx context.Context) ([]models.PeriodRecord, error) {
	for period := 0; period < e.cfg.NumPeriods; period++ {
		if e.registry.Len() == 0 {
			slog.Info("All jobs retired, stopping", "period", period)
			break
		}
		if len(e.registry.Active()) == 0 {
			slog.Info("No active jobs remain, stopping", "period", period)
			break
		}

		record, err := e.runPeriod(ctx, period)
		if err != nil {
			return e.records, err
		}
		e.records = append(e.records, record)
		metrics.PeriodsTotal.WithLabelValues(e.policy.Name()).Inc()
		metrics.ActiveJobs.Set(float64(len(e.registry.Active())))
	}
	return e.records, nil
}

// jobOutcome is one job's uncommitted result, gathered during EXECUTE and
// applied in COMMIT. Partial results are discarded if the period aborts.
type jobOutcome struct {
	jobID           string
	dataUnavailable bool
	transient       bool
	permanent       bool
	failureDetail   error
	accuracyDelta   float64
	processed       float64
	arrivals        float64
}

func (e *Executor) runPeriod(ctx context.Context, period int) (models.PeriodRecord, error) {
	active := e.registry.Active()
	slog.Info("Period starting", "period", period, "policy", e.policy.Name(), "active_jobs", len(active))

	// PROFILE
	profiles, err := e.profiler.ProfileAll(ctx, e.registry.ActiveSnapshots())
	if err != nil {
		return models.PeriodRecord{}, fmt.Errorf("profiling period %d: %w", period, err)
	}
	curves := make(map[string]models.UtilityCurve, len(profiles))
	for _, job := range active {
		profile := profiles[job.ID]
		curves[job.ID] = profile.Curve
		job.ProfilingFailed = profile.Failed
		if profile.Failed {
			metrics.ProfilingFailuresTotal.Inc()
			slog.Warn("Profiling failed, using flat fallback curve", "job", job.ID, "period", period)
			continue
		}
		job.SelectedConfigID = profile.ConfigID
		job.LastEfficiency = profile.Efficiency
	}

	// ALLOCATE
	plan, err := e.policy.ComputePlan(PlanInput{
		Jobs:   e.registry.ActiveSnapshots(),
		Curves: curves,
		Pool:   e.pool,
	})
	if err != nil {
		return models.PeriodRecord{}, fmt.Errorf("policy %s period %d: %w", e.policy.Name(), period, err)
	}
	if err := e.pool.ValidatePlan(plan); err != nil {
		return models.PeriodRecord{}, fmt.Errorf("%w: policy %s period %d: %v",
			ErrPolicyContract, e.policy.Name(), period, err)
	}
	utility := PlanUtility(plan, curves)

	// EXECUTE: the committed plan is atomic for the whole period; per-job
	// work is independent and runs concurrently.
	outcomes := make([]jobOutcome, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range active {
		i := i
		id, cursor, configID := job.ID, job.TaskCursor, job.SelectedConfigID
		alloc := plan[id]
		g.Go(func() error {
			outcome, err := e.executeJob(gctx, id, cursor, configID, alloc)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Discard partial results rather than committing a torn period.
		slog.Warn("Period aborted, discarding partial results", "period", period, "error", err)
		return models.PeriodRecord{}, err
	}

	// COMMIT
	record := models.PeriodRecord{
		RunID:            e.cfg.RunID,
		Period:           period,
		Policy:           e.policy.Name(),
		ActiveJobs:       len(active),
		Plan:             plan,
		EstimatedUtility: utility,
	}
	metrics.PlanUtility.Set(utility)

	for i, job := range active {
		record.Results = append(record.Results, e.commitJob(job, outcomes[i], plan[job.ID]))
	}
	sort.Slice(record.Results, func(a, b int) bool {
		return record.Results[a].JobID < record.Results[b].JobID
	})
	return record, nil
}

// executeJob runs one job's training and inference for the period under its
// committed allocation. Transient and permanent failures are captured in the
// outcome; only context failures abort the period.
func (e *Executor) executeJob(ctx context.Context, id string, cursor int, configID string, alloc models.Allocation) (jobOutcome, error) {
	outcome := jobOutcome{jobID: id}

	available, err := e.data.Available(id, cursor)
	if err != nil {
		if errors.Is(err, backends.ErrPermanent) {
			outcome.permanent = true
			outcome.failureDetail = err
			return outcome, nil
		}
		outcome.transient = true
		outcome.failureDetail = err
		return outcome, nil
	}
	if !available {
		outcome.dataUnavailable = true
		return outcome, nil
	}

	handle, err := e.data.Fetch(id, cursor)
	if err != nil {
		return e.classify(ctx, outcome, err)
	}
	outcome.arrivals = float64(handle.Chunks)

	train, err := e.backend.Run(ctx, backends.RunRequest{
		JobID:    id,
		ConfigID: configID,
		Mode:     backends.ModeTrain,
		Resource: alloc.Training,
		Scale:    e.cfg.Epochs,
		Handle:   handle,
	})
	if err != nil {
		return e.classify(ctx, outcome, err)
	}
	outcome.accuracyDelta = train.AccuracyDelta

	infer, err := e.backend.Run(ctx, backends.RunRequest{
		JobID:    id,
		ConfigID: configID,
		Mode:     backends.ModeInfer,
		Resource: alloc.Inference,
		Scale:    e.cfg.InferenceChunks,
		Handle:   handle,
	})
	if err != nil {
		return e.classify(ctx, outcome, err)
	}
	outcome.processed = infer.Processed

	return outcome, nil
}

// classify sorts a backend error into the failure taxonomy. Context errors
// propagate so the whole period aborts cleanly.
func (e *Executor) classify(ctx context.Context, outcome jobOutcome, err error) (jobOutcome, error) {
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}
	if errors.Is(err, backends.ErrPermanent) {
		outcome.permanent = true
	} else {
		outcome.transient = true
	}
	outcome.failureDetail = err
	return outcome, nil
}

// commitJob writes one job's period outcome into the registry and returns
// its log entry. This is the only place registry state changes.
func (e *Executor) commitJob(job *models.Job, outcome jobOutcome, alloc models.Allocation) models.JobPeriodResult {
	result := models.JobPeriodResult{
		JobID:    job.ID,
		ConfigID: job.SelectedConfigID,
	}

	switch {
	case outcome.permanent:
		result.Failure = models.FailurePermanent
		result.Accuracy = job.LatestAccuracy()
		result.Backlog = job.Backlog
		slog.Warn("Retiring job on permanent failure", "job", job.ID, "error", outcome.failureDetail)
		e.registry.Retire(job.ID)
		metrics.JobsRetiredTotal.WithLabelValues("permanent").Inc()

	case outcome.dataUnavailable || outcome.transient:
		// Allocation wasted; task cursor, accuracy, and last allocation all
		// stay put so the task is retried next period.
		result.Failure = models.FailureTransient
		result.Accuracy = job.LatestAccuracy()
		result.Backlog = job.Backlog
		job.TransientStreak++
		metrics.TransientFailuresTotal.Inc()
		slog.Warn("Transient failure, allocation wasted",
			"job", job.ID, "task", job.TaskCursor, "streak", job.TransientStreak,
			"error", outcome.failureDetail)
		if e.cfg.MaxTransientFailures > 0 && job.TransientStreak >= e.cfg.MaxTransientFailures {
			result.Failure = models.FailurePermanent
			slog.Warn("Retiring job after repeated transient failures",
				"job", job.ID, "streak", job.TransientStreak)
			e.registry.Retire(job.ID)
			metrics.JobsRetiredTotal.WithLabelValues("failure_streak").Inc()
		}

	default:
		if job.ProfilingFailed {
			result.Failure = models.FailureProfiling
		}
		accuracy := job.LatestAccuracy() + outcome.accuracyDelta*(1-job.LatestAccuracy())
		accuracy = math.Min(math.Max(accuracy, 0), 1)
		gain := accuracy - job.LatestAccuracy()

		job.AccuracyHistory = append(job.AccuracyHistory, accuracy)
		job.LastAllocation = alloc
		job.Backlog = math.Max(job.Backlog+outcome.arrivals*float64(e.cfg.InferenceChunks)-outcome.processed, 0)
		job.TransientStreak = 0
		job.TaskCursor++

		result.Accuracy = accuracy
		result.AccuracyGain = gain
		result.TrainingUsed = alloc.Training
		result.InferenceUsed = alloc.Inference
		result.Backlog = job.Backlog

		metrics.JobAllocation.WithLabelValues(job.ID, "training").Set(alloc.Training)
		metrics.JobAllocation.WithLabelValues(job.ID, "inference").Set(alloc.Inference)
		metrics.JobBacklog.WithLabelValues(job.ID).Set(job.Backlog)

		if !job.Active() {
			slog.Info("Job completed all tasks, retiring", "job", job.ID, "task", job.TaskCursor)
			e.registry.Retire(job.ID)
			metrics.JobsRetiredTotal.WithLabelValues("completed").Inc()
		}
	}

	return result
}
