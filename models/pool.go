// ABOUTME: Resource pool model for shared GPU capacity
// ABOUTME: Tracks total capacity, the inference reservation cap, and plan validation

package models

import (
	"fmt"
	"math"
)

// capEpsilon absorbs float rounding when checking plan sums against capacity.
const capEpsilon = 1e-9

// ResourcePool describes the shared compute budget all jobs draw from.
// Capacity is in normalized whole-GPU units.
type ResourcePool struct {
	TotalCapacity        float64 `json:"total_capacity"`
	MaxInferenceFraction float64 `json:"max_inference_fraction"` // fraction of total reservable for inference
}

// InferenceCapacity returns the hard cap on total inference allocation.
func (p ResourcePool) InferenceCapacity() float64 {
	return p.MaxInferenceFraction * p.TotalCapacity
}

// Validate checks the pool parameters themselves.
func (p ResourcePool) Validate() error {
	if p.TotalCapacity <= 0 {
		return fmt.Errorf("total capacity must be positive, got %g", p.TotalCapacity)
	}
	if p.MaxInferenceFraction < 0 || p.MaxInferenceFraction > 1 {
		return fmt.Errorf("max inference fraction must be in [0,1], got %g", p.MaxInferenceFraction)
	}
	return nil
}

// ValidatePlan checks a proposed plan against the pool invariants:
// no negative share, total within capacity, inference within the cap.
func (p ResourcePool) ValidatePlan(plan AllocationPlan) error {
	for id, alloc := range plan {
		if alloc.Training < 0 || alloc.Inference < 0 {
			return fmt.Errorf("job %s has a negative allocation (training %g, inference %g)",
				id, alloc.Training, alloc.Inference)
		}
	}
	if total := plan.Total(); total > p.TotalCapacity+capEpsilon {
		return fmt.Errorf("plan total %g exceeds capacity %g", total, p.TotalCapacity)
	}
	if inf := plan.TotalInference(); inf > p.InferenceCapacity()+capEpsilon {
		return fmt.Errorf("plan inference total %g exceeds inference cap %g", inf, p.InferenceCapacity())
	}
	return nil
}

// QuantumUnits converts a quantum expressed as a fraction of total capacity
// into absolute GPU units, rounded away from zero denormals.
func (p ResourcePool) QuantumUnits(quantumFraction float64) float64 {
	return math.Max(quantumFraction*p.TotalCapacity, 0)
}
