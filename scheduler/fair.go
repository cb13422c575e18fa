// ABOUTME: Fair allocation policy
// ABOUTME: Splits capacity equally across jobs with a configured inference reserve

package scheduler

import (
	"math"

	"github.com/continua-ai/continua/models"
)

// FairPolicy gives every active job the same share regardless of utility.
// It is the baseline the thief policy is measured against, and the fallback
// when no usable utility estimates exist.
type FairPolicy struct {
	inferenceWeight float64
}

func NewFairPolicy(inferenceWeight float64) *FairPolicy {
	return &FairPolicy{inferenceWeight: inferenceWeight}
}

func (p *FairPolicy) Name() string { return "fair" }

func (p *FairPolicy) ComputePlan(in PlanInput) (models.AllocationPlan, error) {
	plan := make(models.AllocationPlan, len(in.Jobs))
	n := float64(len(in.Jobs))
	if n == 0 {
		return plan, nil
	}

	// The inference reserve is bounded by both the pool's hard cap and the
	// configured weight.
	reserve := math.Min(in.Pool.InferenceCapacity(), p.inferenceWeight*in.Pool.TotalCapacity)
	trainEach := (in.Pool.TotalCapacity - reserve) / n
	inferEach := reserve / n

	for _, job := range in.Jobs {
		plan[job.ID] = models.Allocation{Training: trainEach, Inference: inferEach}
	}
	return plan, nil
}
