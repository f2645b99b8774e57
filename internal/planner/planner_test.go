package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/traincrew/artplan/pkg/models"
)

func testPI(weeks int) models.ProgramIncrement {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return models.ProgramIncrement{
		ID:        "pi-1",
		Name:      "PI 1",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, weeks*7),
	}
}

func testTeam(id string, velocity float64, specs ...string) models.Team {
	return models.Team{
		ID: id, Name: id, MemberCount: 5,
		AverageVelocity: velocity, CapacityFactor: 1.0,
		Specializations: specs,
	}
}

// fullCapacityConfig removes the confidence discount so capacity
// numbers in tests are exact.
func fullCapacityConfig() Config {
	cfg := DefaultConfig()
	cfg.ConfidenceFactor = 1.0
	return cfg
}

func scored(id string, points int, wsjf float64) models.ScoredItem {
	return models.ScoredItem{
		WorkItem:  models.WorkItem{ID: id, Type: models.ItemTypeStory, Title: id, Points: points},
		WSJFScore: wsjf,
		JobSize:   float64(points),
	}
}

func graphWith(items []models.ScoredItem, edges ...models.DependencyEdge) *models.DependencyGraph {
	g := &models.DependencyGraph{Edges: edges}
	for _, si := range items {
		g.Nodes = append(g.Nodes, si.WorkItem)
	}
	return g
}

func hard(id, src, dst string) models.DependencyEdge {
	return models.DependencyEdge{
		ID: id, SourceID: src, TargetID: dst,
		Type: models.EdgeRequires, Strength: models.StrengthHard,
		Confidence: 0.9, DetectionMethod: models.DetectionManual,
	}
}

func TestPlanART_PartitionsPIIntoIterations(t *testing.T) {
	p := New(fullCapacityConfig())
	plan, err := p.PlanART(testPI(8), nil, nil, []models.Team{testTeam("t1", 40)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	// 56 days at 14 days each is exactly 4 iterations.
	if len(plan.Iterations) != 4 {
		t.Fatalf("expected 4 iterations, got %d", len(plan.Iterations))
	}
	first := plan.Iterations[0]
	if !first.StartDate.Equal(plan.PI.StartDate) {
		t.Errorf("first iteration starts %v, want %v", first.StartDate, plan.PI.StartDate)
	}
	if tc := first.CapacityFor("t1"); tc == nil || tc.AvailableCapacity != 40 {
		t.Errorf("capacity = %+v, want available 40", tc)
	}
}

func TestPlanART_CapacityAwareDeferralNoWarning(t *testing.T) {
	p := New(fullCapacityConfig())
	items := []models.ScoredItem{
		scored("a", 25, 5.0),
		scored("b", 25, 4.0),
	}

	plan, err := p.PlanART(testPI(4), items, graphWith(items), []models.Team{testTeam("t1", 40)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}
	if len(plan.Warnings) != 0 {
		t.Fatalf("deferral must not warn, got %v", plan.Warnings)
	}

	if got := len(plan.Iterations[0].AllocatedWork); got != 1 {
		t.Fatalf("iteration 1 has %d items, want 1", got)
	}
	if plan.Iterations[0].AllocatedWork[0].WorkItem.ID != "a" {
		t.Errorf("higher-WSJF item should go first, got %s", plan.Iterations[0].AllocatedWork[0].WorkItem.ID)
	}
	if got := len(plan.Iterations[1].AllocatedWork); got != 1 {
		t.Fatalf("iteration 2 has %d items, want 1", got)
	}
}

func TestPlanART_OverflowLandsInFinalIterationWithWarning(t *testing.T) {
	p := New(fullCapacityConfig())
	items := []models.ScoredItem{scored("huge", 100, 5.0)}

	plan, err := p.PlanART(testPI(4), items, graphWith(items), []models.Team{testTeam("t1", 10)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	if len(plan.Warnings) != 1 || plan.Warnings[0].Kind != models.WarnCapacityOverflow {
		t.Fatalf("expected capacity overflow warning, got %v", plan.Warnings)
	}

	last := plan.Iterations[len(plan.Iterations)-1]
	if len(last.AllocatedWork) != 1 {
		t.Fatalf("expected item in final iteration, got %d items", len(last.AllocatedWork))
	}
	tc := last.CapacityFor("t1")
	if !tc.IsOverAllocated {
		t.Error("final iteration capacity should be flagged over-allocated")
	}
	if last.AllocatedWork[0].RiskLevel != models.RiskHigh {
		t.Errorf("over-allocated item risk = %s, want high", last.AllocatedWork[0].RiskLevel)
	}
}

func TestPlanART_HardDependencyOrdering(t *testing.T) {
	p := New(fullCapacityConfig())
	// "late" outscores its dependency, but must not land before it.
	items := []models.ScoredItem{
		scored("base", 20, 1.0),
		scored("late", 25, 9.0),
	}
	g := graphWith(items, hard("e1", "base", "late"))

	plan, err := p.PlanART(testPI(6), items, g, []models.Team{testTeam("t1", 30)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	where := make(map[string]int)
	for i, it := range plan.Iterations {
		for _, aw := range it.AllocatedWork {
			where[aw.WorkItem.ID] = i
		}
	}
	if where["late"] < where["base"] {
		t.Errorf("late (it %d) placed before its dependency base (it %d)", where["late"], where["base"])
	}

	// Both fit, deps satisfied in order: every iteration deliverable.
	for i, it := range plan.Iterations {
		if !it.CanDeliverWorkingSoftware {
			t.Errorf("iteration %d cannot deliver working software", i+1)
		}
	}
	if plan.ARTReadiness.Components.DependencySatisfaction != 1.0 {
		t.Errorf("dependency satisfaction = %v, want 1.0", plan.ARTReadiness.Components.DependencySatisfaction)
	}
}

func TestPlanART_SpecializationRouting(t *testing.T) {
	p := New(fullCapacityConfig())
	items := []models.ScoredItem{
		scored("api-gateway", 5, 3.0),
	}
	items[0].Title = "Build payment gateway API"
	teams := []models.Team{
		testTeam("web", 40, "frontend", "css"),
		testTeam("platform", 40, "api", "payment"),
	}

	plan, err := p.PlanART(testPI(4), items, graphWith(items), teams)
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	aw := plan.Iterations[0].AllocatedWork
	if len(aw) != 1 || aw[0].AssignedTeam != "platform" {
		t.Fatalf("expected platform team assignment, got %+v", aw)
	}
}

func TestPlanART_CapacityLimitInvariant(t *testing.T) {
	p := New(fullCapacityConfig())
	var items []models.ScoredItem
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		items = append(items, scored(id, 7, 2.0))
	}

	plan, err := p.PlanART(testPI(4), items, graphWith(items), []models.Team{testTeam("t1", 20)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	for i, it := range plan.Iterations {
		for _, tc := range it.Capacity {
			if tc.AllocatedPoints > tc.AvailableCapacity && !tc.IsOverAllocated {
				t.Errorf("iteration %d team %s over capacity (%.0f > %.0f) without flag",
					i+1, tc.TeamID, tc.AllocatedPoints, tc.AvailableCapacity)
			}
		}
	}
}

func TestPlanART_InputContractFailures(t *testing.T) {
	p := New(fullCapacityConfig())
	pi := testPI(4)

	tests := []struct {
		name  string
		pi    models.ProgramIncrement
		teams []models.Team
	}{
		{"no teams", pi, nil},
		{"zero velocity", pi, []models.Team{{ID: "t1", MemberCount: 3, AverageVelocity: 0, CapacityFactor: 1}}},
		{"no members", pi, []models.Team{{ID: "t1", MemberCount: 0, AverageVelocity: 20, CapacityFactor: 1}}},
		{"bad capacity factor", pi, []models.Team{{ID: "t1", MemberCount: 3, AverageVelocity: 20, CapacityFactor: 1.5}}},
		{"inverted dates", models.ProgramIncrement{ID: "x", StartDate: pi.EndDate, EndDate: pi.StartDate}, []models.Team{testTeam("t1", 20)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.PlanART(tt.pi, nil, nil, tt.teams)
			if !errors.Is(err, models.ErrInputContract) {
				t.Errorf("expected input contract error, got %v", err)
			}
		})
	}
}

func TestPlanART_ReadinessReflectsDeliverability(t *testing.T) {
	p := New(fullCapacityConfig())
	items := []models.ScoredItem{
		scored("a", 10, 5.0),
		scored("b", 10, 4.0),
	}

	plan, err := p.PlanART(testPI(4), items, graphWith(items, hard("e1", "a", "b")), []models.Team{testTeam("t1", 40)})
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}

	r := plan.ARTReadiness
	if r.ReadinessScore <= 0 || r.ReadinessScore > 1 {
		t.Errorf("readiness score %v outside (0,1]", r.ReadinessScore)
	}
	if r.Components.ValueDeliveryConfidence != plan.Summary.ValueDeliveryConfidence {
		t.Errorf("summary and readiness disagree on value confidence: %v vs %v",
			plan.Summary.ValueDeliveryConfidence, r.Components.ValueDeliveryConfidence)
	}
	if plan.Summary.TotalItems != 2 || plan.Summary.TotalPoints != 20 {
		t.Errorf("summary = %+v, want 2 items / 20 points", plan.Summary)
	}
}

func TestPlanART_DeterministicAcrossRuns(t *testing.T) {
	p := New(fullCapacityConfig())
	items := []models.ScoredItem{
		scored("a", 5, 3.0), scored("b", 5, 3.0), scored("c", 5, 3.0),
	}
	teams := []models.Team{testTeam("t1", 10), testTeam("t2", 10)}

	first, err := p.PlanART(testPI(4), items, graphWith(items), teams)
	if err != nil {
		t.Fatalf("PlanART() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		plan, err := p.PlanART(testPI(4), items, graphWith(items), teams)
		if err != nil {
			t.Fatalf("PlanART() error: %v", err)
		}
		for k := range plan.Iterations {
			a, b := plan.Iterations[k].AllocatedWork, first.Iterations[k].AllocatedWork
			if len(a) != len(b) {
				t.Fatalf("iteration %d item count changed between runs", k)
			}
			for j := range a {
				if a[j].WorkItem.ID != b[j].WorkItem.ID || a[j].AssignedTeam != b[j].AssignedTeam {
					t.Fatalf("allocation differs between runs at iteration %d item %d", k, j)
				}
			}
		}
	}
}
