// ABOUTME: Allocation policy interface and factory
// ABOUTME: Policies consume job snapshots plus utility curves and propose a period plan

package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/continua-ai/continua/models"
)

// ErrPolicyContract marks a plan that violates the resource pool invariants.
// It is fatal to the run: an overcommitted plan means a scheduling defect,
// not an environmental condition.
var ErrPolicyContract = errors.New("allocation plan violates resource pool invariants")

// PlanInput is the read-only snapshot a policy decides from. Jobs are
// ordered by id; curves are keyed by job id.
type PlanInput struct {
	Jobs   []models.Job
	Curves map[string]models.UtilityCurve
	Pool   models.ResourcePool
}

// Policy computes an allocation plan for the upcoming period. Plans must be
// deterministic: identical inputs always produce identical plans.
type Policy interface {
	Name() string
	ComputePlan(in PlanInput) (models.AllocationPlan, error)
}

// NewPolicy builds the configured policy.
func NewPolicy(name string, inferenceWeight, quantumFraction, epsilon float64) (Policy, error) {
	switch name {
	case "fair":
		return NewFairPolicy(inferenceWeight), nil
	case "thief":
		return NewThiefPolicy(quantumFraction, epsilon, inferenceWeight), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// PlanUtility sums the estimated accuracy gain of a plan's training
// allocations under the given curves. Summation runs in job id order so the
// result is bit-identical across runs.
func PlanUtility(plan models.AllocationPlan, curves map[string]models.UtilityCurve) float64 {
	ids := make([]string, 0, len(plan))
	for id := range plan {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := 0.0
	for _, id := range ids {
		if curve, ok := curves[id]; ok {
			total += curve.ValueAt(plan[id].Training)
		}
	}
	return total
}
