// ABOUTME: Utility curve model mapping resource fraction to estimated accuracy gain
// ABOUTME: Provides concave extrapolation from a single profiling sample and marginal queries

package models

import "math"

// Curve extrapolation shapes. Both are concave, monotone non-decreasing, and
// exactly zero at zero resource; both pass through the measured trial point.
// The shape is an empirically tuned choice, so it stays configurable.
const (
	CurveShapeSqrt = "sqrt"
	CurveShapeLog  = "log"
)

// UtilityCurve estimates accuracy gain as a function of allocated resource
// for one job in the current period. Gains are sampled on a uniform grid:
// Gains[i] is the estimated gain at resource i*Step. Gains[0] is always 0.
type UtilityCurve struct {
	Step  float64   `json:"step"`
	Gains []float64 `json:"gains"`
}

// MaxResource returns the largest resource level the curve covers.
func (c UtilityCurve) MaxResource() float64 {
	if len(c.Gains) < 2 {
		return 0
	}
	return c.Step * float64(len(c.Gains)-1)
}

// ValueAt returns the estimated gain at resource level r, linearly
// interpolating between grid points. Values clamp to the curve ends, so
// allocating beyond the profiled range never estimates extra gain.
func (c UtilityCurve) ValueAt(r float64) float64 {
	if len(c.Gains) == 0 || r <= 0 {
		return 0
	}
	max := c.MaxResource()
	if r >= max {
		return c.Gains[len(c.Gains)-1]
	}
	pos := r / c.Step
	i := int(pos)
	frac := pos - float64(i)
	return c.Gains[i] + frac*(c.Gains[i+1]-c.Gains[i])
}

// MarginalGain returns the per-unit gain of adding one quantum on top of the
// current allocation.
func (c UtilityCurve) MarginalGain(alloc, quantum float64) float64 {
	if quantum <= 0 {
		return 0
	}
	return (c.ValueAt(alloc+quantum) - c.ValueAt(alloc)) / quantum
}

// MarginalLoss returns the per-unit gain given up by removing one quantum
// from the current allocation.
func (c UtilityCurve) MarginalLoss(alloc, quantum float64) float64 {
	if quantum <= 0 {
		return 0
	}
	low := alloc - quantum
	if low < 0 {
		low = 0
	}
	return (c.ValueAt(alloc) - c.ValueAt(low)) / quantum
}

// IsFlat reports whether the curve offers no meaningful gain from extra
// resource beyond its first step, within eps.
func (c UtilityCurve) IsFlat(eps float64) bool {
	if len(c.Gains) < 3 {
		return true
	}
	return math.Abs(c.Gains[len(c.Gains)-1]-c.Gains[1]) <= eps
}

// FlatCurve builds the fallback curve used when profiling fails: a constant
// level (the job's last known gain estimate) at every non-zero resource, so
// downstream policies still receive a usable, zero-slope estimate.
func FlatCurve(step, maxResource, level float64) UtilityCurve {
	if level < 0 {
		level = 0
	}
	n := gridSize(step, maxResource)
	gains := make([]float64, n)
	for i := 1; i < n; i++ {
		gains[i] = level
	}
	return UtilityCurve{Step: step, Gains: gains}
}

// ExtrapolateCurve expands one profiling sample (trialGain measured at
// trialFraction) into a full curve using the configured concave shape.
// Negative measured gains clamp to zero so no curve ever estimates that
// more resource hurts.
func ExtrapolateCurve(shape string, trialFraction, trialGain, step, maxResource float64) UtilityCurve {
	if trialGain < 0 {
		trialGain = 0
	}
	n := gridSize(step, maxResource)
	gains := make([]float64, n)
	for i := 1; i < n; i++ {
		r := float64(i) * step
		switch shape {
		case CurveShapeLog:
			// Normalized so the curve passes through (trialFraction, trialGain).
			gains[i] = trialGain * math.Log1p(r/trialFraction) / math.Ln2
		default:
			gains[i] = trialGain * math.Sqrt(r/trialFraction)
		}
	}
	return UtilityCurve{Step: step, Gains: gains}
}

func gridSize(step, maxResource float64) int {
	if step <= 0 || maxResource <= 0 {
		return 1
	}
	return int(math.Ceil(maxResource/step)) + 1
}
