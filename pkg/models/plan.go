package models

import "time"

// ProgramIncrement is the fixed planning horizon being planned.
type ProgramIncrement struct {
	// ID is the unique identifier for this PI.
	ID string `json:"id"`
	// Name is the PI's display name.
	Name string `json:"name"`
	// StartDate is the first day of the PI.
	StartDate time.Time `json:"start_date"`
	// EndDate is the last day of the PI.
	EndDate time.Time `json:"end_date"`
}

// IterationCapacity tracks one team's capacity within one iteration.
type IterationCapacity struct {
	// TeamID identifies the team.
	TeamID string `json:"team_id"`
	// TotalCapacity is velocity before adjustment.
	TotalCapacity float64 `json:"total_capacity"`
	// AvailableCapacity is TotalCapacity * capacity factor * confidence factor.
	AvailableCapacity float64 `json:"available_capacity"`
	// AllocatedPoints is the sum of points placed on this team.
	AllocatedPoints float64 `json:"allocated_points"`
	// ConfidenceFactor discounts planning confidence (0-1].
	ConfidenceFactor float64 `json:"confidence_factor"`
	// IsOverAllocated is set when allocation exceeded available capacity.
	IsOverAllocated bool `json:"is_over_allocated,omitempty"`
}

// RiskLevel classifies the schedule risk of an allocation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AllocatedWorkItem is a work item placed into an iteration for a team.
type AllocatedWorkItem struct {
	// WorkItem is the scored item that was placed.
	WorkItem ScoredItem `json:"work_item"`
	// AssignedTeam is the ID of the team that will do the work.
	AssignedTeam string `json:"assigned_team"`
	// AllocatedPoints is the points counted against team capacity.
	AllocatedPoints float64 `json:"allocated_points"`
	// Dependencies lists the hard-dependency item IDs.
	Dependencies []string `json:"dependencies,omitempty"`
	// BlockedBy lists dependencies not yet satisfied at allocation time.
	BlockedBy []string `json:"blocked_by,omitempty"`
	// ValueContribution is the item's WSJF score at allocation.
	ValueContribution float64 `json:"value_contribution"`
	// RiskLevel classifies schedule risk for this placement.
	RiskLevel RiskLevel `json:"risk_level"`
}

// Iteration is one timebox within a PI with its allocations.
type Iteration struct {
	// ID is the unique identifier for this iteration.
	ID string `json:"id"`
	// Name is the iteration's display name.
	Name string `json:"name"`
	// StartDate is the first day of the iteration.
	StartDate time.Time `json:"start_date"`
	// EndDate is the last day of the iteration.
	EndDate time.Time `json:"end_date"`
	// Teams lists the IDs of teams planned in this iteration.
	Teams []string `json:"teams"`
	// Capacity tracks per-team capacity and allocation.
	Capacity []IterationCapacity `json:"capacity"`
	// AllocatedWork lists the items placed in this iteration.
	AllocatedWork []AllocatedWorkItem `json:"allocated_work,omitempty"`
	// CanDeliverWorkingSoftware is true when every allocated item's
	// hard dependencies resolve in this or an earlier iteration.
	CanDeliverWorkingSoftware bool `json:"can_deliver_working_software"`
}

// CapacityFor returns the capacity record for a team, or nil.
func (it *Iteration) CapacityFor(teamID string) *IterationCapacity {
	for i := range it.Capacity {
		if it.Capacity[i].TeamID == teamID {
			return &it.Capacity[i]
		}
	}
	return nil
}

// ReadinessComponents are the weighted inputs to the readiness score.
type ReadinessComponents struct {
	// DependencySatisfaction is the fraction of hard dependencies
	// resolved in order.
	DependencySatisfaction float64 `json:"dependency_satisfaction"`
	// CapacityBalance penalizes both under- and over-utilization.
	CapacityBalance float64 `json:"capacity_balance"`
	// ValueDeliveryConfidence is the fraction of iterations that can
	// deliver working software.
	ValueDeliveryConfidence float64 `json:"value_delivery_confidence"`
}

// ARTReadiness aggregates plan quality into a single score.
type ARTReadiness struct {
	// ReadinessScore is the weighted average of the components (0-1).
	ReadinessScore float64 `json:"readiness_score"`
	// Components are the individual readiness inputs.
	Components ReadinessComponents `json:"components"`
}

// PlanSummary carries headline figures for a plan.
type PlanSummary struct {
	// TotalItems is the number of items placed.
	TotalItems int `json:"total_items"`
	// TotalPoints is the sum of allocated points.
	TotalPoints float64 `json:"total_points"`
	// ValueDeliveryConfidence is the fraction of iterations that can
	// deliver working software.
	ValueDeliveryConfidence float64 `json:"value_delivery_confidence"`
}

// WarningKind classifies a non-fatal planning warning.
type WarningKind string

const (
	// WarnCycleBroken records a dependency cycle broken during analysis.
	WarnCycleBroken WarningKind = "cycle_broken"
	// WarnCapacityOverflow records an item force-placed over capacity.
	WarnCapacityOverflow WarningKind = "capacity_overflow"
	// WarnMissingEstimate records a defaulted estimation input.
	WarnMissingEstimate WarningKind = "missing_estimate"
	// WarnCannotSplit records an item too small to decompose further.
	WarnCannotSplit WarningKind = "cannot_split"
)

// ValidationWarning is a recoverable problem surfaced with the plan.
type ValidationWarning struct {
	// Kind classifies the warning.
	Kind WarningKind `json:"kind"`
	// ItemID is the affected work item, if any.
	ItemID string `json:"item_id,omitempty"`
	// Message is the human-readable description.
	Message string `json:"message"`
}

// ARTPlan is the full output of one planning run.
type ARTPlan struct {
	// PI is the program increment this plan covers.
	PI ProgramIncrement `json:"pi"`
	// Iterations are the ordered iteration allocations.
	Iterations []Iteration `json:"iterations"`
	// ARTReadiness aggregates plan quality.
	ARTReadiness ARTReadiness `json:"art_readiness"`
	// Summary carries headline figures.
	Summary PlanSummary `json:"summary"`
	// Warnings lists every recoverable problem from the run.
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}
