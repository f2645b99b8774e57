// Package engine wires the four planning stages into a single run:
// decomposition, dependency analysis, WSJF scoring, and iteration
// allocation. One run is a pure batch computation over an immutable
// input snapshot.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/traincrew/artplan/internal/config"
	"github.com/traincrew/artplan/internal/decompose"
	"github.com/traincrew/artplan/internal/depgraph"
	"github.com/traincrew/artplan/internal/planner"
	"github.com/traincrew/artplan/internal/wsjf"
	"github.com/traincrew/artplan/pkg/models"
)

// PlanRequest is one immutable planning input snapshot.
type PlanRequest struct {
	// PI is the program increment being planned.
	PI models.ProgramIncrement
	// Items is the backlog snapshot.
	Items []models.WorkItem
	// Edges are explicit dependency hints from the backlog provider.
	Edges []models.DependencyEdge
	// Teams are the release train's teams with capacity figures.
	Teams []models.Team
}

// PlanResult is the full output of one run: the plan plus the
// intermediate artifacts consumers export or audit.
type PlanResult struct {
	// Plan is the final ART plan including all warnings.
	Plan *models.ARTPlan
	// Graph is the analyzed dependency graph over decomposed items.
	Graph *models.DependencyGraph
	// Scored is the ranked item list consumed by allocation.
	Scored []models.ScoredItem
	// Traces are the decomposition records for the traceability sink.
	Traces []decompose.Trace
}

// Engine runs planning pipelines. It is safe for concurrent use; each
// run operates only on its own inputs.
type Engine struct {
	decomposer *decompose.Engine
	analyzer   *depgraph.Analyzer
	scorer     *wsjf.Scorer
	planner    *planner.Planner
}

// New assembles an Engine from its four stages.
func New(d *decompose.Engine, a *depgraph.Analyzer, s *wsjf.Scorer, p *planner.Planner) *Engine {
	return &Engine{decomposer: d, analyzer: a, scorer: s, planner: p}
}

// NewFromConfig assembles an Engine with stages built from loaded
// configuration.
func NewFromConfig(cfg *config.Config) *Engine {
	return New(
		decompose.New(cfg.Decomposition.Threshold),
		depgraph.New(),
		wsjf.New(wsjf.Config{
			CriticalPathBoost: cfg.Scoring.CriticalPathBoost,
			NeutralValue:      cfg.Scoring.NeutralValue,
		}),
		planner.New(planner.Config{
			IterationDays:    cfg.Iterations.LengthDays,
			ConfidenceFactor: cfg.Iterations.ConfidenceFactor,
			ReadinessWeights: planner.ReadinessWeights{
				Dependency: cfg.Readiness.DependencyWeight,
				Capacity:   cfg.Readiness.CapacityWeight,
				Value:      cfg.Readiness.ValueWeight,
			},
		}),
	)
}

// SetDebugLog forwards a debug logging function to the stages that
// support one.
func (e *Engine) SetDebugLog(fn func(format string, args ...interface{})) {
	e.analyzer.SetDebugLog(fn)
	e.planner.SetDebugLog(fn)
}

// Run executes the pipeline: decompose, analyze, score, allocate.
// Warnings from every stage are collected onto the returned plan.
// The context is checked between stages only; a single stage is never
// interrupted, so an abandoned run leaves no partial effects.
func (e *Engine) Run(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	items, traces, warnings := e.decomposer.DecomposeAll(req.Items)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := remapEdges(items, req.Edges)

	graph, graphWarnings, err := e.analyzer.Analyze(items, edges)
	if err != nil {
		return nil, fmt.Errorf("analyze dependencies: %w", err)
	}
	warnings = append(warnings, graphWarnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored, scoreWarnings := e.scorer.Score(items, graph)
	warnings = append(warnings, scoreWarnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := e.planner.PlanART(req.PI, scored, graph, req.Teams)
	if err != nil {
		return nil, fmt.Errorf("allocate iterations: %w", err)
	}
	plan.Warnings = append(warnings, plan.Warnings...)

	return &PlanResult{
		Plan:   plan,
		Graph:  graph,
		Scored: scored,
		Traces: traces,
	}, nil
}

// remapEdges redirects explicit edges whose endpoints were decomposed
// away onto the decomposed item set: an edge into a split parent
// attaches to its first child, an edge out of a split parent leaves
// from its last child. This keeps upstream hints valid without asking
// the provider to know about decomposition.
func remapEdges(after []models.WorkItem, edges []models.DependencyEdge) []models.DependencyEdge {
	if len(edges) == 0 {
		return nil
	}

	present := make(map[string]bool, len(after))
	firstChild := make(map[string]string)
	lastChild := make(map[string]string)
	for _, item := range after {
		present[item.ID] = true
	}
	for _, item := range after {
		if item.ParentID == "" || present[item.ParentID] {
			continue
		}
		if _, ok := firstChild[item.ParentID]; !ok {
			firstChild[item.ParentID] = item.ID
		}
		lastChild[item.ParentID] = item.ID
	}
	// Splits of splits: resolve transitively to a surviving item.
	resolve := func(id string, edgeOut bool) string {
		for i := 0; i < 8 && !present[id]; i++ {
			var next string
			var ok bool
			if edgeOut {
				next, ok = lastChild[id]
			} else {
				next, ok = firstChild[id]
			}
			if !ok {
				return id
			}
			id = next
		}
		return id
	}

	out := make([]models.DependencyEdge, 0, len(edges))
	for _, e := range edges {
		e.SourceID = resolve(e.SourceID, true)
		e.TargetID = resolve(e.TargetID, false)
		if e.SourceID == e.TargetID {
			// A hint collapsing onto one item after decomposition
			// carries no scheduling information.
			continue
		}
		out = append(out, e)
	}
	return out
}

// Scenario is a named what-if planning input.
type Scenario struct {
	// Name labels the scenario in results.
	Name string
	// Request is the scenario's planning input.
	Request PlanRequest
}

// ScenarioResult pairs a scenario with its outcome.
type ScenarioResult struct {
	// Name is the scenario's label.
	Name string
	// Result is the planning output, nil on error.
	Result *PlanResult
	// Err is the scenario's failure, if any.
	Err error
}

// RunScenarios plans independent scenarios concurrently, one
// goroutine per scenario. Results are returned in input order; a
// failing scenario does not stop the others.
func (e *Engine) RunScenarios(ctx context.Context, scenarios []Scenario) []ScenarioResult {
	results := make([]ScenarioResult, len(scenarios))

	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			res, err := e.Run(ctx, sc.Request)
			results[i] = ScenarioResult{Name: sc.Name, Result: res, Err: err}
		}(i, sc)
	}
	wg.Wait()

	return results
}
