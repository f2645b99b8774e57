// Package depgraph builds and analyzes the dependency graph over a
// backlog: cycle detection, cycle breaking, critical path, and
// summary statistics.
package depgraph

import (
	"fmt"
	"math"
	"sort"

	"github.com/traincrew/artplan/pkg/models"
)

// Analyzer builds dependency graphs from work items and edge hints.
type Analyzer struct {
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		debugLog: func(format string, args ...interface{}) {}, // no-op by default
	}
}

// SetDebugLog sets the debug logging function.
func (a *Analyzer) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		a.debugLog = fn
	}
}

// Analyze builds the full dependency graph for a set of work items.
// Explicit edges come from an external detector; structural edges are
// derived from parent links when both ends are in the item set.
//
// Cycles are reported, never fatal: each strongly connected component
// of size > 1 is recorded, then broken for path purposes by dropping
// its weakest edge, with a warning per dropped edge. An edge that
// references an unknown item or forms a self-loop violates the input
// contract and aborts the run.
func (a *Analyzer) Analyze(items []models.WorkItem, explicit []models.DependencyEdge) (*models.DependencyGraph, []models.ValidationWarning, error) {
	nodes := make(map[string]models.WorkItem, len(items))
	for _, item := range items {
		nodes[item.ID] = item
	}
	a.debugLog("[depgraph.Analyze] %d items, %d explicit edges", len(items), len(explicit))

	edges := make([]models.DependencyEdge, 0, len(explicit))
	for _, e := range explicit {
		if e.SourceID == e.TargetID {
			return nil, nil, fmt.Errorf("edge %s is a self-loop on %s: %w", e.ID, e.SourceID, models.ErrInputContract)
		}
		if _, ok := nodes[e.SourceID]; !ok {
			return nil, nil, fmt.Errorf("edge %s references unknown source %s: %w", e.ID, e.SourceID, models.ErrInputContract)
		}
		if _, ok := nodes[e.TargetID]; !ok {
			return nil, nil, fmt.Errorf("edge %s references unknown target %s: %w", e.ID, e.TargetID, models.ErrInputContract)
		}
		edges = append(edges, e)
	}

	edges = append(edges, a.structuralEdges(items, nodes, edges)...)

	g := &models.DependencyGraph{
		Nodes: append([]models.WorkItem(nil), items...),
		Edges: edges,
	}

	components := stronglyConnected(nodeIDs(items), edges)
	for _, comp := range components {
		if len(comp) > 1 {
			g.CircularDependencies = append(g.CircularDependencies, comp)
		}
	}
	sort.Slice(g.CircularDependencies, func(i, j int) bool {
		return g.CircularDependencies[i][0] < g.CircularDependencies[j][0]
	})

	retained, warnings := a.breakCycles(nodeIDs(items), edges, g.CircularDependencies)
	markDropped(g.Edges, retained)

	g.CriticalPath = criticalPath(nodes, retained)
	g.Statistics = statistics(items, edges)

	a.debugLog("[depgraph.Analyze] %d cycles, critical path length %d", len(g.CircularDependencies), len(g.CriticalPath))
	return g, warnings, nil
}

// structuralEdges derives hard edges from parent links: a child may be
// scheduled no earlier than its parent, when the parent itself is in
// the schedulable set. Duplicates of explicit edges are skipped.
func (a *Analyzer) structuralEdges(items []models.WorkItem, nodes map[string]models.WorkItem, explicit []models.DependencyEdge) []models.DependencyEdge {
	existing := make(map[string]bool, len(explicit))
	for _, e := range explicit {
		existing[e.SourceID+"->"+e.TargetID] = true
	}

	var derived []models.DependencyEdge
	for _, item := range items {
		if item.ParentID == "" {
			continue
		}
		if _, ok := nodes[item.ParentID]; !ok {
			// Parent was decomposed away or lives outside this
			// snapshot; nothing to schedule against.
			continue
		}
		if existing[item.ParentID+"->"+item.ID] {
			continue
		}
		derived = append(derived, models.DependencyEdge{
			ID:              fmt.Sprintf("struct-%s-%s", item.ParentID, item.ID),
			SourceID:        item.ParentID,
			TargetID:        item.ID,
			Type:            models.EdgeRequires,
			Strength:        models.StrengthHard,
			Confidence:      1.0,
			DetectionMethod: models.DetectionStructural,
		})
	}
	return derived
}

// breakCycles drops edges until no strongly connected component of
// size > 1 remains. Within a cycle the dropped edge is the
// lowest-confidence soft edge if any soft edge exists, otherwise the
// lowest-confidence hard edge; ties break by lexicographic edge ID.
// Returns the retained edge set and one warning per dropped edge.
func (a *Analyzer) breakCycles(ids []string, edges []models.DependencyEdge, cycles [][]string) ([]models.DependencyEdge, []models.ValidationWarning) {
	if len(cycles) == 0 {
		return edges, nil
	}

	retained := append([]models.DependencyEdge(nil), edges...)
	var warnings []models.ValidationWarning

	// A single removal may leave a smaller cycle behind, so iterate
	// until the retained graph is acyclic. The edge count bounds the
	// number of removals.
	for range edges {
		var cyclic [][]string
		for _, comp := range stronglyConnected(ids, retained) {
			if len(comp) > 1 {
				cyclic = append(cyclic, comp)
			}
		}
		if len(cyclic) == 0 {
			break
		}

		for _, comp := range cyclic {
			drop := weakestEdge(retained, comp)
			if drop == nil {
				continue
			}
			retained = removeEdge(retained, drop.ID)
			warnings = append(warnings, models.ValidationWarning{
				Kind:   models.WarnCycleBroken,
				ItemID: drop.TargetID,
				Message: fmt.Sprintf("dependency cycle through %v broken by dropping %s edge %s (%s -> %s, confidence %.2f)",
					comp, drop.Strength, drop.ID, drop.SourceID, drop.TargetID, drop.Confidence),
			})
			a.debugLog("[depgraph.breakCycles] dropped edge %s for cycle %v", drop.ID, comp)
		}
	}

	return retained, warnings
}

// weakestEdge picks the edge to drop from a strongly connected
// component: soft before hard, then lowest confidence, then ID.
func weakestEdge(edges []models.DependencyEdge, comp []string) *models.DependencyEdge {
	in := make(map[string]bool, len(comp))
	for _, id := range comp {
		in[id] = true
	}

	var best *models.DependencyEdge
	for i := range edges {
		e := &edges[i]
		if !in[e.SourceID] || !in[e.TargetID] {
			continue
		}
		if best == nil || edgeWeaker(e, best) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

// edgeWeaker reports whether a should be dropped in preference to b.
func edgeWeaker(a, b *models.DependencyEdge) bool {
	if a.Strength != b.Strength {
		return a.Strength == models.StrengthSoft
	}
	if a.Confidence != b.Confidence {
		return a.Confidence < b.Confidence
	}
	return a.ID < b.ID
}

// markDropped flags every graph edge missing from the retained set.
func markDropped(all []models.DependencyEdge, retained []models.DependencyEdge) {
	kept := make(map[string]bool, len(retained))
	for _, e := range retained {
		kept[e.ID] = true
	}
	for i := range all {
		if !kept[all[i].ID] {
			all[i].Dropped = true
		}
	}
}

func removeEdge(edges []models.DependencyEdge, id string) []models.DependencyEdge {
	out := edges[:0]
	for _, e := range edges {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// statistics computes summary counts over the full edge set.
func statistics(items []models.WorkItem, edges []models.DependencyEdge) models.GraphStatistics {
	stats := models.GraphStatistics{}
	degree := make(map[string]int, len(items))

	for _, e := range edges {
		switch e.Strength {
		case models.StrengthHard:
			stats.HardDependencies++
		case models.StrengthSoft:
			stats.SoftDependencies++
		}
		degree[e.SourceID]++
		degree[e.TargetID]++
	}

	if len(items) > 0 {
		stats.AverageDependencies = float64(len(edges)) / float64(len(items))
	}

	var mean float64
	for _, item := range items {
		if degree[item.ID] == 0 {
			stats.IndependentItems++
		}
		mean += float64(degree[item.ID])
	}
	if len(items) == 0 {
		return stats
	}
	mean /= float64(len(items))

	var variance float64
	for _, item := range items {
		d := float64(degree[item.ID]) - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(items)))

	threshold := mean + stddev
	for _, item := range items {
		if float64(degree[item.ID]) > threshold {
			stats.HighDependencyItems = append(stats.HighDependencyItems, item.ID)
		}
	}
	sort.Strings(stats.HighDependencyItems)

	return stats
}

func nodeIDs(items []models.WorkItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
