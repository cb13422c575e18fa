// ABOUTME: Microprofiler producing per-job utility curves from short trials
// ABOUTME: Runs one bounded trial per candidate config, concurrent across jobs, pool-reserved

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/continua-ai/continua/backends"
	"github.com/continua-ai/continua/models"
)

// milliGPU is the semaphore granularity for pool reservations: trials
// acquire whole milli-GPU units so fractional draws stay exact.
const milliGPU = 1000

// JobProfile is the profiling outcome for one job in one period.
type JobProfile struct {
	Curve      models.UtilityCurve
	ConfigID   string  // winning candidate, unchanged from the job's previous pick on failure
	Efficiency float64 // winning gain-per-resource estimate
	Failed     bool    // trial could not run; Curve is the flat fallback
}

// Microprofiler estimates each job's achievable accuracy-per-resource curve
// by running one short trial per candidate configuration at a fixed small
// resource fraction, then extrapolating with the configured concave shape.
type Microprofiler struct {
	backend backends.ModelBackend
	data    backends.DataSource
	catalog backends.ConfigCatalog
	pool    models.ResourcePool
	sem     *semaphore.Weighted

	shape         string
	trialFraction float64
	step          float64
}

func NewMicroprofiler(
	backend backends.ModelBackend,
	data backends.DataSource,
	catalog backends.ConfigCatalog,
	pool models.ResourcePool,
	shape string,
	trialFraction, step float64,
) (*Microprofiler, error) {
	if trialFraction <= 0 || trialFraction > pool.TotalCapacity {
		return nil, fmt.Errorf("trial fraction %g must be in (0, %g]", trialFraction, pool.TotalCapacity)
	}
	if len(catalog.Candidates()) == 0 {
		return nil, fmt.Errorf("candidate configuration set is empty")
	}
	return &Microprofiler{
		backend:       backend,
		data:          data,
		catalog:       catalog,
		pool:          pool,
		sem:           semaphore.NewWeighted(int64(pool.TotalCapacity * milliGPU)),
		shape:         shape,
		trialFraction: trialFraction,
		step:          step,
	}, nil
}

// ProfileAll profiles every job concurrently. Trials for different jobs
// reserve their resource fraction from the shared pool, so the combined
// draw never exceeds total capacity. Profiling failure is per-job and
// non-fatal: the job keeps its previous configuration and gets a flat
// fallback curve at its last known efficiency.
func (p *Microprofiler) ProfileAll(ctx context.Context, jobs []models.Job) (map[string]JobProfile, error) {
	profiles := make(map[string]JobProfile, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			profile, err := p.profileJob(gctx, job)
			if err != nil {
				return err
			}
			mu.Lock()
			profiles[job.ID] = profile
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (p *Microprofiler) profileJob(ctx context.Context, job models.Job) (JobProfile, error) {
	available, err := p.data.Available(job.ID, job.TaskCursor)
	if err != nil || !available {
		slog.Warn("Profiling skipped, no data for current task",
			"job", job.ID, "task", job.TaskCursor, "error", err)
		return p.fallback(job), nil
	}
	handle, err := p.data.Fetch(job.ID, job.TaskCursor)
	if err != nil {
		slog.Warn("Profiling fetch failed", "job", job.ID, "task", job.TaskCursor, "error", err)
		return p.fallback(job), nil
	}

	bestID := ""
	bestEff := 0.0
	bestGain := 0.0
	ran := false

	// Candidates come back sorted, so the strict comparison below breaks
	// efficiency ties toward the lowest configuration id.
	for _, configID := range p.catalog.Candidates() {
		gain, err := p.runTrial(ctx, job, configID, handle)
		if err != nil {
			if ctx.Err() != nil {
				return JobProfile{}, err
			}
			slog.Warn("Profiling trial failed", "job", job.ID, "config", configID, "error", err)
			continue
		}

		cost, err := p.catalog.CostProfile(configID)
		if err != nil {
			return JobProfile{}, fmt.Errorf("cost profile for %s: %w", configID, err)
		}
		eff := gain / (p.trialFraction * cost.CostFactor)

		if !ran || eff > bestEff {
			bestID, bestEff, bestGain = configID, eff, gain
		}
		ran = true
	}

	if !ran {
		return p.fallback(job), nil
	}

	curve := models.ExtrapolateCurve(p.shape, p.trialFraction, bestGain, p.step, p.pool.TotalCapacity)
	return JobProfile{Curve: curve, ConfigID: bestID, Efficiency: bestEff}, nil
}

// runTrial reserves the trial fraction from the pool, executes one short
// training run, and releases the reservation unconditionally.
func (p *Microprofiler) runTrial(ctx context.Context, job models.Job, configID string, handle backends.DataHandle) (float64, error) {
	units := int64(p.trialFraction * milliGPU)
	if units < 1 {
		units = 1
	}
	if err := p.sem.Acquire(ctx, units); err != nil {
		return 0, err
	}
	defer p.sem.Release(units)

	res, err := p.backend.Run(ctx, backends.RunRequest{
		JobID:    job.ID,
		ConfigID: configID,
		Mode:     backends.ModeTrain,
		Resource: p.trialFraction,
		Scale:    1,
		Handle:   handle,
	})
	if err != nil {
		return 0, err
	}
	return res.AccuracyDelta, nil
}

// fallback builds the profiling-failed outcome: previous configuration
// retained, flat curve pinned at the gain the job last achieved at trial
// scale, so downstream policies still receive a usable estimate.
func (p *Microprofiler) fallback(job models.Job) JobProfile {
	level := job.LastEfficiency * p.trialFraction
	return JobProfile{
		Curve:      models.FlatCurve(p.step, p.pool.TotalCapacity, level),
		ConfigID:   job.SelectedConfigID,
		Efficiency: job.LastEfficiency,
		Failed:     true,
	}
}
