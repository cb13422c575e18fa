// ABOUTME: Thief allocation policy
// ABOUTME: Greedy quantum exchange from low-marginal-utility jobs to high-marginal-utility jobs

package scheduler

import (
	"math"

	"github.com/continua-ai/continua/models"
)

// ThiefPolicy starts from the fair split and repeatedly steals one resource
// quantum from the job that values it least for the job that values it most,
// judged by the discrete slope of each job's utility curve. Transfers
// conserve the total, so the pool invariants hold by construction.
type ThiefPolicy struct {
	quantumFraction float64
	epsilon         float64
	baseline        *FairPolicy
}

func NewThiefPolicy(quantumFraction, epsilon, inferenceWeight float64) *ThiefPolicy {
	return &ThiefPolicy{
		quantumFraction: quantumFraction,
		epsilon:         epsilon,
		baseline:        NewFairPolicy(inferenceWeight),
	}
}

func (p *ThiefPolicy) Name() string { return "thief" }

func (p *ThiefPolicy) ComputePlan(in PlanInput) (models.AllocationPlan, error) {
	plan, err := p.baseline.ComputePlan(in)
	if err != nil {
		return nil, err
	}
	if len(in.Jobs) < 2 {
		return plan, nil
	}

	// Jobs whose profiling failed carry a flat fallback curve; a job with no
	// curve at all is treated the same way. If nothing offers a slope, the
	// exchange has no information to act on and the fair split stands.
	curves := make([]models.UtilityCurve, len(in.Jobs))
	allFlat := true
	for i, job := range in.Jobs {
		curves[i] = in.Curves[job.ID]
		if !curves[i].IsFlat(p.epsilon) {
			allFlat = false
		}
	}
	if allFlat {
		return plan, nil
	}

	quantum := in.Pool.QuantumUnits(p.quantumFraction)
	if quantum <= 0 {
		return plan, nil
	}

	alloc := make([]float64, len(in.Jobs))
	for i, job := range in.Jobs {
		alloc[i] = plan[job.ID].Training
	}

	// The bound covers a full drain of every job toward a single recipient;
	// it guarantees termination even under curve noise or cyclic near-ties.
	maxIters := len(in.Jobs) * int(math.Ceil(in.Pool.TotalCapacity/quantum))

	for iter := 0; iter < maxIters; iter++ {
		recipient := p.pickRecipient(curves, alloc, quantum)
		if recipient < 0 {
			break
		}
		donor := p.pickDonor(curves, alloc, quantum, recipient)
		if donor < 0 {
			break
		}

		gain := curves[recipient].MarginalGain(alloc[recipient], quantum)
		loss := curves[donor].MarginalLoss(alloc[donor], quantum)
		if gain <= loss+p.epsilon {
			// No single transfer strictly improves total estimated utility:
			// the plan is a local optimum under the exchange.
			break
		}

		alloc[donor] -= quantum
		if alloc[donor] < 0 {
			alloc[donor] = 0
		}
		alloc[recipient] += quantum
	}

	for i, job := range in.Jobs {
		a := plan[job.ID]
		a.Training = alloc[i]
		plan[job.ID] = a
	}
	return plan, nil
}

// pickRecipient returns the index of the job with the highest marginal gain
// for one more quantum. Jobs at the top of their curve (marginal within
// epsilon of zero) are saturated and cannot be takers. Ties prefer the
// smaller current allocation, then the earlier job id, which biases toward
// equalizing and prevents oscillation.
func (p *ThiefPolicy) pickRecipient(curves []models.UtilityCurve, alloc []float64, quantum float64) int {
	best := -1
	bestGain := 0.0
	for i := range curves {
		gain := curves[i].MarginalGain(alloc[i], quantum)
		if gain <= p.epsilon {
			continue
		}
		switch {
		case best < 0 || gain > bestGain+p.epsilon:
			best, bestGain = i, gain
		case math.Abs(gain-bestGain) <= p.epsilon && alloc[i] < alloc[best]:
			best, bestGain = i, gain
		}
	}
	return best
}

// pickDonor returns the index of the job giving up the least utility per
// quantum. A job is only a valid donor while it can still surrender a full
// quantum without going negative. Ties prefer the larger current allocation,
// then the earlier job id.
func (p *ThiefPolicy) pickDonor(curves []models.UtilityCurve, alloc []float64, quantum float64, recipient int) int {
	best := -1
	bestLoss := 0.0
	for i := range curves {
		if i == recipient || alloc[i] < quantum {
			continue
		}
		loss := curves[i].MarginalLoss(alloc[i], quantum)
		switch {
		case best < 0 || loss < bestLoss-p.epsilon:
			best, bestLoss = i, loss
		case math.Abs(loss-bestLoss) <= p.epsilon && alloc[i] > alloc[best]:
			best, bestLoss = i, loss
		}
	}
	return best
}
