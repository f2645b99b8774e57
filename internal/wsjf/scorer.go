// Package wsjf ranks work items by Weighted Shortest Job First:
// cost of delay divided by job size.
package wsjf

import (
	"fmt"
	"sort"

	"github.com/traincrew/artplan/pkg/models"
)

// Attribute keys recognized on work items as estimation inputs.
const (
	AttrBusinessValue   = "business_value"
	AttrTimeCriticality = "time_criticality"
	AttrRiskOpportunity = "risk_opportunity"
)

// NeutralMidpoint substitutes for missing estimation inputs on the
// 1-5 scale. Upstream estimation is often incomplete and scoring must
// never fail because of it.
const NeutralMidpoint = 3.0

// DefaultCriticalPathBoost is the multiplier applied to risk/opportunity
// for items on the critical path. Schedule risk compounds for items
// gating other work.
const DefaultCriticalPathBoost = 1.20

// Config holds scoring knobs. The zero value is not usable; build one
// with DefaultConfig and override as needed.
type Config struct {
	// CriticalPathBoost multiplies riskOpportunity for critical-path items.
	CriticalPathBoost float64
	// NeutralValue substitutes for missing estimation inputs.
	NeutralValue float64
}

// DefaultConfig returns the standard scoring configuration.
func DefaultConfig() Config {
	return Config{
		CriticalPathBoost: DefaultCriticalPathBoost,
		NeutralValue:      NeutralMidpoint,
	}
}

// Scorer computes WSJF scores for work items.
type Scorer struct {
	cfg Config
}

// New creates a Scorer with the given configuration.
func New(cfg Config) *Scorer {
	if cfg.CriticalPathBoost <= 0 {
		cfg.CriticalPathBoost = DefaultCriticalPathBoost
	}
	if cfg.NeutralValue <= 0 {
		cfg.NeutralValue = NeutralMidpoint
	}
	return &Scorer{cfg: cfg}
}

// Score annotates every item with its WSJF score and returns the
// result sorted descending by score, ties broken by ascending ID.
// Missing estimation inputs default to the neutral midpoint and are
// reported as warnings, never errors. The graph is read only.
func (s *Scorer) Score(items []models.WorkItem, graph *models.DependencyGraph) ([]models.ScoredItem, []models.ValidationWarning) {
	scored := make([]models.ScoredItem, 0, len(items))
	var warnings []models.ValidationWarning

	for _, item := range items {
		si := models.ScoredItem{WorkItem: item}

		var missing []string
		si.BusinessValue, missing = s.input(item, AttrBusinessValue, missing)
		si.TimeCriticality, missing = s.input(item, AttrTimeCriticality, missing)
		si.RiskOpportunity, missing = s.input(item, AttrRiskOpportunity, missing)
		if len(missing) > 0 {
			warnings = append(warnings, models.ValidationWarning{
				Kind:    models.WarnMissingEstimate,
				ItemID:  item.ID,
				Message: fmt.Sprintf("item %s missing estimates %v, defaulted to %.0f", item.ID, missing, s.cfg.NeutralValue),
			})
		}

		if graph != nil && graph.OnCriticalPath(item.ID) {
			si.OnCriticalPath = true
			si.RiskOpportunity *= s.cfg.CriticalPathBoost
		}

		// Floor job size at 1 so zero-point items never divide by zero.
		si.JobSize = float64(item.Points)
		if si.JobSize < 1 {
			si.JobSize = 1
		}

		si.WSJFScore = (si.BusinessValue + si.TimeCriticality + si.RiskOpportunity) / si.JobSize
		scored = append(scored, si)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].WSJFScore != scored[j].WSJFScore {
			return scored[i].WSJFScore > scored[j].WSJFScore
		}
		return scored[i].ID < scored[j].ID
	})

	return scored, warnings
}

// input reads one estimation attribute, appending its name to missing
// when absent.
func (s *Scorer) input(item models.WorkItem, name string, missing []string) (float64, []string) {
	if _, ok := item.Attributes[name]; !ok {
		return s.cfg.NeutralValue, append(missing, name)
	}
	return item.Attributes[name], missing
}
