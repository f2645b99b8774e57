// Package planner allocates scored, dependency-ordered work items to
// iterations under team capacity constraints and validates that each
// iteration can deliver working software.
package planner

import (
	"fmt"
	"sort"

	"github.com/traincrew/artplan/pkg/models"
)

// DefaultIterationDays is the length of one iteration.
const DefaultIterationDays = 14

// DefaultConfidenceFactor discounts raw velocity for planning
// uncertainty when computing available capacity.
const DefaultConfidenceFactor = 0.85

// Config holds planning knobs.
type Config struct {
	// IterationDays is the fixed iteration length in days.
	IterationDays int
	// ConfidenceFactor discounts velocity when computing available
	// capacity (0-1].
	ConfidenceFactor float64
	// ReadinessWeights weight the readiness components; they are
	// normalized before use.
	ReadinessWeights ReadinessWeights
}

// ReadinessWeights weight the three readiness components.
type ReadinessWeights struct {
	Dependency float64
	Capacity   float64
	Value      float64
}

// DefaultConfig returns the standard planner configuration.
func DefaultConfig() Config {
	return Config{
		IterationDays:    DefaultIterationDays,
		ConfidenceFactor: DefaultConfidenceFactor,
		ReadinessWeights: ReadinessWeights{Dependency: 0.4, Capacity: 0.3, Value: 0.3},
	}
}

// Planner produces ART plans from scored backlogs.
type Planner struct {
	cfg Config
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a Planner with the given configuration.
func New(cfg Config) *Planner {
	if cfg.IterationDays < 1 {
		cfg.IterationDays = DefaultIterationDays
	}
	if cfg.ConfidenceFactor <= 0 || cfg.ConfidenceFactor > 1 {
		cfg.ConfidenceFactor = DefaultConfidenceFactor
	}
	w := cfg.ReadinessWeights
	if w.Dependency+w.Capacity+w.Value <= 0 {
		cfg.ReadinessWeights = DefaultConfig().ReadinessWeights
	}
	return &Planner{
		cfg:      cfg,
		debugLog: func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (p *Planner) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		p.debugLog = fn
	}
}

// PlanART produces an iteration-by-iteration plan for one PI. The
// construction runs as four sequential phases over immutable inputs:
// partition the PI into iterations, resolve dependency order, allocate
// under capacity, then validate deliverable value and readiness.
func (p *Planner) PlanART(pi models.ProgramIncrement, items []models.ScoredItem, graph *models.DependencyGraph, teams []models.Team) (*models.ARTPlan, error) {
	if err := validateInputs(pi, teams); err != nil {
		return nil, err
	}

	iterations := p.partitionIterations(pi, teams)
	p.debugLog("[planner.PlanART] %d iterations for %d items across %d teams", len(iterations), len(items), len(teams))

	alloc := newAllocation(iterations, teams, graph)
	warnings := p.allocate(alloc, orderItems(items))

	plan := &models.ARTPlan{
		PI:         pi,
		Iterations: alloc.iterations,
		Warnings:   warnings,
	}
	p.validate(plan, alloc)

	return plan, nil
}

// validateInputs rejects structurally corrupt input before planning.
func validateInputs(pi models.ProgramIncrement, teams []models.Team) error {
	if !pi.EndDate.After(pi.StartDate) {
		return fmt.Errorf("PI %s ends %s before it starts %s: %w",
			pi.ID, pi.EndDate.Format("2006-01-02"), pi.StartDate.Format("2006-01-02"), models.ErrInputContract)
	}
	if len(teams) == 0 {
		return fmt.Errorf("no teams supplied for PI %s: %w", pi.ID, models.ErrInputContract)
	}
	for _, team := range teams {
		if team.MemberCount <= 0 {
			return fmt.Errorf("team %s has no members: %w", team.ID, models.ErrInputContract)
		}
		if team.AverageVelocity <= 0 {
			return fmt.Errorf("team %s has zero velocity: %w", team.ID, models.ErrInputContract)
		}
		if team.CapacityFactor <= 0 || team.CapacityFactor > 1 {
			return fmt.Errorf("team %s capacity factor %.2f outside (0,1]: %w", team.ID, team.CapacityFactor, models.ErrInputContract)
		}
	}
	return nil
}

// partitionIterations cuts the PI into fixed-length iterations and
// seeds per-team capacity for each.
func (p *Planner) partitionIterations(pi models.ProgramIncrement, teams []models.Team) []models.Iteration {
	days := int(pi.EndDate.Sub(pi.StartDate).Hours() / 24)
	n := (days + p.cfg.IterationDays - 1) / p.cfg.IterationDays
	if n < 1 {
		n = 1
	}

	iterations := make([]models.Iteration, n)
	for i := 0; i < n; i++ {
		start := pi.StartDate.AddDate(0, 0, i*p.cfg.IterationDays)
		end := start.AddDate(0, 0, p.cfg.IterationDays-1)
		if end.After(pi.EndDate) {
			end = pi.EndDate
		}

		it := models.Iteration{
			ID:        fmt.Sprintf("%s-it%d", pi.ID, i+1),
			Name:      fmt.Sprintf("Iteration %d", i+1),
			StartDate: start,
			EndDate:   end,
		}
		for _, team := range teams {
			it.Teams = append(it.Teams, team.ID)
			it.Capacity = append(it.Capacity, models.IterationCapacity{
				TeamID:            team.ID,
				TotalCapacity:     team.AverageVelocity,
				AvailableCapacity: team.AverageVelocity * team.CapacityFactor * p.cfg.ConfidenceFactor,
				ConfidenceFactor:  p.cfg.ConfidenceFactor,
			})
		}
		iterations[i] = it
	}
	return iterations
}

// orderItems returns items in descending WSJF order, ties by ID, so
// allocation does not depend on caller ordering.
func orderItems(items []models.ScoredItem) []models.ScoredItem {
	ordered := append([]models.ScoredItem(nil), items...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].WSJFScore != ordered[j].WSJFScore {
			return ordered[i].WSJFScore > ordered[j].WSJFScore
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}
