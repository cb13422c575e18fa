// ABOUTME: Allocation plan model produced by scheduling policies
// ABOUTME: Maps job id to training/inference GPU fractions for one period

package models

// Allocation is one job's share of the pool for a period, in GPU units.
type Allocation struct {
	Training  float64 `json:"training"`
	Inference float64 `json:"inference"`
}

// AllocationPlan maps job id to its allocation for the upcoming period.
// A plan is immutable once handed to the period executor; policies build a
// fresh one each period.
type AllocationPlan map[string]Allocation

// TotalTraining sums training allocations across all jobs.
func (p AllocationPlan) TotalTraining() float64 {
	total := 0.0
	for _, a := range p {
		total += a.Training
	}
	return total
}

// TotalInference sums inference allocations across all jobs.
func (p AllocationPlan) TotalInference() float64 {
	total := 0.0
	for _, a := range p {
		total += a.Inference
	}
	return total
}

// Total sums all allocations across all jobs.
func (p AllocationPlan) Total() float64 {
	return p.TotalTraining() + p.TotalInference()
}

// Clone returns an independent copy of the plan.
func (p AllocationPlan) Clone() AllocationPlan {
	out := make(AllocationPlan, len(p))
	for id, a := range p {
		out[id] = a
	}
	return out
}
