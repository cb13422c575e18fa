// ABOUTME: External collaborator interfaces for the scheduling core
// ABOUTME: Defines the data source, model execution backend, and configuration catalog contracts

package backends

import (
	"context"
	"errors"
	"time"
)

// Backend failure classes. Transient failures are recovered within the
// period (flat-curve fallback or wasted allocation); permanent failures
// retire the job.
var (
	ErrTransient = errors.New("backend transiently unavailable")
	ErrPermanent = errors.New("backend permanently unavailable")
)

// Mode selects what a backend run does with its resource share.
type Mode string

const (
	ModeTrain Mode = "train"
	ModeInfer Mode = "infer"
)

// DataHandle is the opaque handle a data source returns for one job task.
// Execution passes it back to the model backend unchanged.
type DataHandle struct {
	JobID  string
	Task   int
	Chunks int // labeled/inference chunks arriving in this task window
}

// DataSource answers whether a job has data for a given task and hands out
// the handle used by training/inference execution. An error wrapping
// ErrPermanent means the job can never produce more periods.
type DataSource interface {
	Available(jobID string, task int) (bool, error)
	Fetch(jobID string, task int) (DataHandle, error)
}

// RunRequest describes one opaque training or inference execution.
type RunRequest struct {
	JobID    string
	ConfigID string
	Mode     Mode
	Resource float64 // GPU fraction reserved for this run
	Scale    int     // epochs for train, chunks for infer
	Handle   DataHandle
}

// RunResult is the realized outcome of one execution.
type RunResult struct {
	AccuracyDelta float64       // realized accuracy change (train) or serving accuracy (infer)
	Processed     float64       // inference units completed (infer only)
	WallTime      time.Duration // consumed wall-clock time
}

// ModelBackend executes training or inference for a job at a resource
// fraction. Failures wrap ErrTransient or ErrPermanent.
type ModelBackend interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// CostProfile is the static cost description of one hyperparameter
// configuration, used to normalize profiling efficiency across candidates.
type CostProfile struct {
	ConfigID   string  `json:"config_id"`
	CostFactor float64 `json:"cost_factor"` // relative GPU-time per unit of work, 1.0 = nominal
}

// ConfigCatalog resolves hyperparameter configuration ids to cost profiles.
type ConfigCatalog interface {
	Candidates() []string
	CostProfile(configID string) (CostProfile, error)
}
