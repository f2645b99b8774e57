package planner

import "github.com/traincrew/artplan/pkg/models"

// targetUtilization is the capacity utilization the balance score
// treats as ideal; both idle and overloaded teams pull it down.
const targetUtilization = 0.85

// validate fills in per-iteration deliverability, the readiness score
// and the plan summary after allocation completes.
func (p *Planner) validate(plan *models.ARTPlan, a *allocation) {
	totalDeps, satisfiedDeps := 0, 0

	for i := range plan.Iterations {
		it := &plan.Iterations[i]
		deliverable := true

		for _, aw := range it.AllocatedWork {
			for _, dep := range aw.Dependencies {
				totalDeps++
				k, ok := a.placed[dep]
				if ok && k <= i {
					satisfiedDeps++
				} else {
					deliverable = false
				}
			}
		}
		it.CanDeliverWorkingSoftware = deliverable
	}

	depScore := 1.0
	if totalDeps > 0 {
		depScore = float64(satisfiedDeps) / float64(totalDeps)
	}
	capScore := capacityBalance(plan.Iterations)
	valScore := valueConfidence(plan.Iterations)

	w := p.cfg.ReadinessWeights
	total := w.Dependency + w.Capacity + w.Value
	plan.ARTReadiness = models.ARTReadiness{
		ReadinessScore: (w.Dependency*depScore + w.Capacity*capScore + w.Value*valScore) / total,
		Components: models.ReadinessComponents{
			DependencySatisfaction:  depScore,
			CapacityBalance:         capScore,
			ValueDeliveryConfidence: valScore,
		},
	}

	plan.Summary = summarize(plan.Iterations, valScore)
}

// capacityBalance averages a per-team per-iteration utilization score
// that peaks at the target utilization and falls off toward both zero
// and overload.
func capacityBalance(iterations []models.Iteration) float64 {
	total, cells := 0.0, 0
	for _, it := range iterations {
		for _, tc := range it.Capacity {
			if tc.AvailableCapacity <= 0 {
				continue
			}
			util := tc.AllocatedPoints / tc.AvailableCapacity
			dev := util - targetUtilization
			if dev < 0 {
				dev = -dev
			}
			score := 1 - dev/targetUtilization
			if score < 0 {
				score = 0
			}
			total += score
			cells++
		}
	}
	if cells == 0 {
		return 0
	}
	return total / float64(cells)
}

// valueConfidence is the fraction of iterations able to deliver
// working software.
func valueConfidence(iterations []models.Iteration) float64 {
	if len(iterations) == 0 {
		return 0
	}
	deliverable := 0
	for _, it := range iterations {
		if it.CanDeliverWorkingSoftware {
			deliverable++
		}
	}
	return float64(deliverable) / float64(len(iterations))
}

func summarize(iterations []models.Iteration, valScore float64) models.PlanSummary {
	s := models.PlanSummary{ValueDeliveryConfidence: valScore}
	for _, it := range iterations {
		s.TotalItems += len(it.AllocatedWork)
		for _, aw := range it.AllocatedWork {
			s.TotalPoints += aw.AllocatedPoints
		}
	}
	return s
}
