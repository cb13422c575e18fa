// ABOUTME: Job model for one independently scheduled camera feed
// ABOUTME: Tracks task cursor, selected configuration, accuracy history, and backlog across periods

package models

// Job is the per-feed scheduling state carried across retraining periods.
// The period executor is the sole writer; policies and the microprofiler
// only ever see snapshot copies.
type Job struct {
	ID              string `json:"id"`
	TaskCursor      int    `json:"task_cursor"`
	StartTask       int    `json:"start_task"`
	TerminationTask int    `json:"termination_task"`

	// SelectedConfigID is the hyperparameter configuration chosen by the
	// most recent successful profiling pass; empty until first profiled.
	SelectedConfigID string `json:"selected_config_id,omitempty"`

	AccuracyHistory []float64  `json:"accuracy_history,omitempty"`
	LastAllocation  Allocation `json:"last_allocation"`
	Backlog         float64    `json:"backlog"` // pending inference units, never negative

	// LastEfficiency is the most recent measured gain-per-resource estimate,
	// kept so a failed profiling pass can still produce a usable flat curve.
	LastEfficiency float64 `json:"last_efficiency"`

	// ProfilingFailed marks that the current period's profiling pass could
	// not run for this job; reset every period.
	ProfilingFailed bool `json:"profiling_failed,omitempty"`

	// TransientStreak counts consecutive periods with transient failures;
	// reset on any successful period.
	TransientStreak int `json:"transient_streak,omitempty"`
}

// Active reports whether the job still has retraining periods left.
func (j *Job) Active() bool {
	return j.TaskCursor >= j.StartTask && j.TaskCursor <= j.TerminationTask
}

// LatestAccuracy returns the most recent measured accuracy, or zero before
// the first committed period.
func (j *Job) LatestAccuracy() float64 {
	if len(j.AccuracyHistory) == 0 {
		return 0
	}
	return j.AccuracyHistory[len(j.AccuracyHistory)-1]
}

// Snapshot returns a copy safe to hand to policies: the accuracy history is
// duplicated so a policy cannot reach back into registry state.
func (j *Job) Snapshot() Job {
	copyJob := *j
	copyJob.AccuracyHistory = append([]float64(nil), j.AccuracyHistory...)
	return copyJob
}
