package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/traincrew/artplan/pkg/models"
)

// allocation is the working state of the capacity-allocation phase.
type allocation struct {
	iterations []models.Iteration
	teams      []models.Team
	// placed maps item ID to the iteration index it landed in.
	placed map[string]int
	// hardDeps maps item ID to its retained hard dependencies.
	hardDeps map[string][]string
}

func newAllocation(iterations []models.Iteration, teams []models.Team, graph *models.DependencyGraph) *allocation {
	a := &allocation{
		iterations: iterations,
		teams:      teams,
		placed:     make(map[string]int),
		hardDeps:   make(map[string][]string),
	}
	if graph != nil {
		for _, n := range graph.Nodes {
			a.hardDeps[n.ID] = graph.HardDependenciesOf(n.ID)
		}
	}
	return a
}

// allocate places every item using a greedy topological scheduler:
// items are taken in descending WSJF order but become eligible only
// once all their hard dependencies are placed; blocked items are
// deferred and retried after each pass.
func (p *Planner) allocate(a *allocation, ordered []models.ScoredItem) []models.ValidationWarning {
	var warnings []models.ValidationWarning

	pending := ordered
	for len(pending) > 0 {
		var deferred []models.ScoredItem
		progressed := false

		for _, item := range pending {
			earliest, ready := a.earliestEligible(item.ID)
			if !ready {
				deferred = append(deferred, item)
				continue
			}
			if warn := a.place(item, earliest, false); warn != nil {
				warnings = append(warnings, *warn)
			}
			progressed = true
		}

		pending = deferred
		if !progressed {
			// Only reachable if the scheduling graph still holds a
			// cycle, which the analyzer prevents. Force-place so a
			// plan is always produced, flagging the unmet deps.
			for _, item := range pending {
				if warn := a.place(item, 0, true); warn != nil {
					warnings = append(warnings, *warn)
				}
			}
			break
		}
	}

	return warnings
}

// earliestEligible returns the first iteration an item may occupy:
// the latest iteration among its hard dependencies. Not ready until
// every dependency is placed.
func (a *allocation) earliestEligible(id string) (int, bool) {
	earliest := 0
	for _, dep := range a.hardDeps[id] {
		k, ok := a.placed[dep]
		if !ok {
			return 0, false
		}
		if k > earliest {
			earliest = k
		}
	}
	return earliest, true
}

// place allocates one item starting the search at iteration earliest.
// The best-matching team is tried across iterations first, then the
// remaining teams. When nothing fits, the item lands in the final
// iteration as an over-allocation with a capacity warning.
func (a *allocation) place(item models.ScoredItem, earliest int, forced bool) *models.ValidationWarning {
	ranked := a.rankTeams(item, earliest)

	for _, teamID := range ranked {
		for k := earliest; k < len(a.iterations); k++ {
			tc := a.iterations[k].CapacityFor(teamID)
			if tc == nil {
				continue
			}
			if tc.AllocatedPoints+float64(item.Points) <= tc.AvailableCapacity {
				a.commit(item, teamID, k, false, forced)
				return nil
			}
		}
	}

	// Over-allocation: final iteration, best-matching team.
	last := len(a.iterations) - 1
	teamID := ranked[0]
	a.commit(item, teamID, last, true, forced)
	return &models.ValidationWarning{
		Kind:   models.WarnCapacityOverflow,
		ItemID: item.ID,
		Message: fmt.Sprintf("item %s (%d points) exceeds remaining capacity everywhere, over-allocated to team %s in %s",
			item.ID, item.Points, teamID, a.iterations[last].Name),
	}
}

// commit records an allocation into the iteration.
func (a *allocation) commit(item models.ScoredItem, teamID string, k int, over, forced bool) {
	tc := a.iterations[k].CapacityFor(teamID)
	tc.AllocatedPoints += float64(item.Points)
	if over {
		tc.IsOverAllocated = true
	}

	deps := a.hardDeps[item.ID]
	var blocked []string
	if forced {
		for _, dep := range deps {
			if _, ok := a.placed[dep]; !ok {
				blocked = append(blocked, dep)
			}
		}
	}

	a.iterations[k].AllocatedWork = append(a.iterations[k].AllocatedWork, models.AllocatedWorkItem{
		WorkItem:          item,
		AssignedTeam:      teamID,
		AllocatedPoints:   float64(item.Points),
		Dependencies:      deps,
		BlockedBy:         blocked,
		ValueContribution: item.WSJFScore,
		RiskLevel:         riskLevel(item, over, blocked),
	})
	a.placed[item.ID] = k
}

// riskLevel classifies the schedule risk of a placement.
func riskLevel(item models.ScoredItem, over bool, blocked []string) models.RiskLevel {
	switch {
	case over || len(blocked) > 0:
		return models.RiskHigh
	case item.OnCriticalPath:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// rankTeams orders team IDs by specialization match against the
// item's inferred domain keywords, breaking ties by remaining
// capacity in the earliest candidate iteration and then by ID.
func (a *allocation) rankTeams(item models.ScoredItem, earliest int) []string {
	keywords := domainKeywords(item.WorkItem)

	type candidate struct {
		id        string
		match     int
		remaining float64
	}
	cands := make([]candidate, 0, len(a.teams))
	for _, team := range a.teams {
		c := candidate{id: team.ID}
		for _, spec := range team.Specializations {
			if keywords[strings.ToLower(spec)] {
				c.match++
			}
		}
		if earliest < len(a.iterations) {
			if tc := a.iterations[earliest].CapacityFor(team.ID); tc != nil {
				c.remaining = tc.AvailableCapacity - tc.AllocatedPoints
			}
		}
		cands = append(cands, c)
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].match != cands[j].match {
			return cands[i].match > cands[j].match
		}
		if cands[i].remaining != cands[j].remaining {
			return cands[i].remaining > cands[j].remaining
		}
		return cands[i].id < cands[j].id
	})

	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}

// domainKeywords tokenizes an item's type, title and description into
// a lowercase word set for specialization matching.
func domainKeywords(item models.WorkItem) map[string]bool {
	words := make(map[string]bool)
	words[strings.ToLower(string(item.Type))] = true

	tokenize := func(s string) {
		for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		}) {
			if len(w) > 2 {
				words[w] = true
			}
		}
	}
	tokenize(item.Title)
	tokenize(item.Description)
	return words
}
