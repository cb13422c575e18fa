// ABOUTME: Period record models for the ordered output log
// ABOUTME: Captures per-period plan, per-job realized accuracy, usage, and failures

package models

// Failure kinds recorded on a job's period result. Empty means the period
// ran cleanly for the job.
const (
	FailureProfiling = "profiling" // trial could not run; flat-curve fallback used
	FailureTransient = "transient" // training/inference wasted this period
	FailurePermanent = "permanent" // job retired
)

// JobPeriodResult is one job's realized outcome for one period.
type JobPeriodResult struct {
	JobID         string  `json:"job_id"`
	ConfigID      string  `json:"config_id,omitempty"`
	Accuracy      float64 `json:"accuracy"`
	AccuracyGain  float64 `json:"accuracy_gain"`
	TrainingUsed  float64 `json:"training_used"`
	InferenceUsed float64 `json:"inference_used"`
	Backlog       float64 `json:"backlog"`
	Failure       string  `json:"failure,omitempty"`
}

// PeriodRecord is one entry of the ordered run log consumed downstream.
type PeriodRecord struct {
	RunID            string            `json:"run_id"`
	Period           int               `json:"period"`
	Policy           string            `json:"policy"`
	ActiveJobs       int               `json:"active_jobs"`
	Plan             AllocationPlan    `json:"plan"`
	EstimatedUtility float64           `json:"estimated_utility"`
	Results          []JobPeriodResult `json:"results"`
}
