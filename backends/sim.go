// ABOUTME: Deterministic simulated data source and model execution backend
// ABOUTME: Lets experiments and tests run without GPUs, with scripted data gaps and failures

package backends

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// SimDataSource simulates per-task data arrival. Gaps and permanent
// exhaustion are scripted explicitly so runs stay reproducible.
type SimDataSource struct {
	ChunksPerTask int
	Unavailable   map[string]map[int]bool // jobID -> tasks with no data this period
	ExhaustedAt   map[string]int          // jobID -> task at which the feed ends for good
}

func NewSimDataSource(chunksPerTask int) *SimDataSource {
	return &SimDataSource{
		ChunksPerTask: chunksPerTask,
		Unavailable:   make(map[string]map[int]bool),
		ExhaustedAt:   make(map[string]int),
	}
}

// MarkUnavailable scripts a one-period data gap for a job.
func (s *SimDataSource) MarkUnavailable(jobID string, task int) {
	if s.Unavailable[jobID] == nil {
		s.Unavailable[jobID] = make(map[int]bool)
	}
	s.Unavailable[jobID][task] = true
}

func (s *SimDataSource) Available(jobID string, task int) (bool, error) {
	if end, ok := s.ExhaustedAt[jobID]; ok && task >= end {
		return false, fmt.Errorf("feed %s ended at task %d: %w", jobID, end, ErrPermanent)
	}
	if s.Unavailable[jobID][task] {
		return false, nil
	}
	return true, nil
}

func (s *SimDataSource) Fetch(jobID string, task int) (DataHandle, error) {
	ok, err := s.Available(jobID, task)
	if err != nil {
		return DataHandle{}, err
	}
	if !ok {
		return DataHandle{}, fmt.Errorf("no data for %s task %d: %w", jobID, task, ErrTransient)
	}
	return DataHandle{JobID: jobID, Task: task, Chunks: s.ChunksPerTask}, nil
}

// SimBackend models training and inference outcomes deterministically from a
// seed. Each job/configuration pair gets a stable efficiency factor, and the
// accuracy response to resource is concave, so heterogeneous marginal value
// emerges the same way every run.
type SimBackend struct {
	seed      int64
	failTasks map[string]map[int]bool // scripted transient execution failures
}

func NewSimBackend(seed int64) *SimBackend {
	return &SimBackend{
		seed:      seed,
		failTasks: make(map[string]map[int]bool),
	}
}

// FailTask scripts a transient execution failure for a job's task.
func (s *SimBackend) FailTask(jobID string, task int) {
	if s.failTasks[jobID] == nil {
		s.failTasks[jobID] = make(map[int]bool)
	}
	s.failTasks[jobID][task] = true
}

func (s *SimBackend) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	select {
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	default:
	}

	if s.failTasks[req.JobID][req.Handle.Task] {
		return RunResult{}, fmt.Errorf("%s %s task %d: %w", req.Mode, req.JobID, req.Handle.Task, ErrTransient)
	}
	if req.Resource <= 0 {
		return RunResult{}, nil
	}

	eff := s.efficiency(req.JobID, req.ConfigID)
	switch req.Mode {
	case ModeInfer:
		// Throughput scales linearly with resource; chunks bound the work.
		throughput := 4 + 8*eff
		processed := math.Min(req.Resource*float64(req.Scale)*throughput, float64(req.Handle.Chunks)*float64(req.Scale))
		return RunResult{
			Processed: processed,
			WallTime:  time.Duration(float64(req.Scale)/math.Max(req.Resource, 1e-3)) * time.Millisecond,
		}, nil
	default:
		// Concave accuracy response: diminishing returns in resource, mild
		// benefit from extra epochs.
		delta := eff * math.Sqrt(req.Resource) * (1 + 0.05*math.Log1p(float64(req.Scale)))
		return RunResult{
			AccuracyDelta: delta,
			WallTime:      time.Duration(float64(req.Scale)*eff/math.Max(req.Resource, 1e-3)) * time.Millisecond,
		}, nil
	}
}

// efficiency derives a stable factor in [0.3, 1.3) for a job/config pair.
func (s *SimBackend) efficiency(jobID, configID string) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%s/%s", s.seed, jobID, configID)
	return 0.3 + float64(h.Sum64()%1000)/1000.0
}
