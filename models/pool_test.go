// ABOUTME: Tests for resource pool invariant checking
// ABOUTME: Validates plan totals, inference cap, and negative allocation rejection

package models

import "testing"

func TestValidatePlan_WithinCapacity(t *testing.T) {
	// Pool: 1.0 GPU total, 25% inference cap -> inference capacity 0.25
	pool := ResourcePool{TotalCapacity: 1.0, MaxInferenceFraction: 0.25}

	plan := AllocationPlan{
		"zurich": {Training: 0.4, Inference: 0.1},
		"vegas":  {Training: 0.35, Inference: 0.15},
	}

	if err := pool.ValidatePlan(plan); err != nil {
		t.Errorf("Expected valid plan, got %v", err)
	}
}

func TestValidatePlan_Overcommit(t *testing.T) {
	pool := ResourcePool{TotalCapacity: 1.0, MaxInferenceFraction: 0.25}

	plan := AllocationPlan{
		"zurich": {Training: 0.7, Inference: 0.1},
		"vegas":  {Training: 0.3, Inference: 0.1},
	}

	if err := pool.ValidatePlan(plan); err == nil {
		t.Error("Expected error for total 1.2 over capacity 1.0, got nil")
	}
}

func TestValidatePlan_InferenceCapExceeded(t *testing.T) {
	// Total 0.9 fits in capacity, but inference 0.3 exceeds the 0.25 cap.
	pool := ResourcePool{TotalCapacity: 1.0, MaxInferenceFraction: 0.25}

	plan := AllocationPlan{
		"zurich": {Training: 0.3, Inference: 0.2},
		"vegas":  {Training: 0.3, Inference: 0.1},
	}

	if err := pool.ValidatePlan(plan); err == nil {
		t.Error("Expected error for inference 0.3 over cap 0.25, got nil")
	}
}

func TestValidatePlan_NegativeAllocation(t *testing.T) {
	pool := ResourcePool{TotalCapacity: 1.0, MaxInferenceFraction: 0.25}

	plan := AllocationPlan{
		"zurich": {Training: -0.1, Inference: 0},
	}

	if err := pool.ValidatePlan(plan); err == nil {
		t.Error("Expected error for negative training allocation, got nil")
	}
}

func TestValidatePlan_ExactCapacityAccepted(t *testing.T) {
	// Plans that land exactly on the caps are valid; rounding slack only.
	pool := ResourcePool{TotalCapacity: 1.0, MaxInferenceFraction: 0.25}

	plan := AllocationPlan{
		"zurich": {Training: 0.375, Inference: 0.125},
		"vegas":  {Training: 0.375, Inference: 0.125},
	}

	if err := pool.ValidatePlan(plan); err != nil {
		t.Errorf("Expected exact-capacity plan to validate, got %v", err)
	}
}

func TestPoolValidate(t *testing.T) {
	if err := (ResourcePool{TotalCapacity: 0, MaxInferenceFraction: 0.2}).Validate(); err == nil {
		t.Error("Expected error for zero capacity, got nil")
	}
	if err := (ResourcePool{TotalCapacity: 1, MaxInferenceFraction: 1.5}).Validate(); err == nil {
		t.Error("Expected error for inference fraction above 1, got nil")
	}
	if err := (ResourcePool{TotalCapacity: 2, MaxInferenceFraction: 0.25}).Validate(); err != nil {
		t.Errorf("Expected valid pool, got %v", err)
	}
}
