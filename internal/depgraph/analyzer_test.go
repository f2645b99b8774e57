package depgraph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/traincrew/artplan/pkg/models"
)

func item(id string, points int) models.WorkItem {
	return models.WorkItem{ID: id, Type: models.ItemTypeStory, Title: id, Points: points}
}

func hardEdge(id, src, dst string, confidence float64) models.DependencyEdge {
	return models.DependencyEdge{
		ID: id, SourceID: src, TargetID: dst,
		Type: models.EdgeRequires, Strength: models.StrengthHard,
		Confidence: confidence, DetectionMethod: models.DetectionManual,
	}
}

func softEdge(id, src, dst string, confidence float64) models.DependencyEdge {
	e := hardEdge(id, src, dst, confidence)
	e.Strength = models.StrengthSoft
	e.Type = models.EdgeRelatesTo
	return e
}

func TestAnalyze_UnknownEdgeEndpointFailsFast(t *testing.T) {
	a := New()
	items := []models.WorkItem{item("a", 3)}

	tests := []struct {
		name string
		edge models.DependencyEdge
	}{
		{"unknown target", hardEdge("e1", "a", "ghost", 0.9)},
		{"unknown source", hardEdge("e1", "ghost", "a", 0.9)},
		{"self loop", hardEdge("e1", "a", "a", 0.9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.Analyze(items, []models.DependencyEdge{tt.edge})
			if !errors.Is(err, models.ErrInputContract) {
				t.Errorf("expected input contract error, got %v", err)
			}
		})
	}
}

func TestAnalyze_CycleReportedAndBroken(t *testing.T) {
	a := New()
	items := []models.WorkItem{item("A", 3), item("B", 5), item("C", 2)}
	edges := []models.DependencyEdge{
		hardEdge("e1", "A", "B", 0.9),
		hardEdge("e2", "B", "C", 0.8),
		hardEdge("e3", "C", "A", 0.4), // lowest confidence, gets dropped
	}

	g, warnings, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if len(g.CircularDependencies) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(g.CircularDependencies))
	}
	if got := g.CircularDependencies[0]; !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("cycle = %v, want [A B C]", got)
	}

	if len(warnings) != 1 || warnings[0].Kind != models.WarnCycleBroken {
		t.Fatalf("expected one cycle-broken warning, got %v", warnings)
	}

	// With e3 dropped the critical path is A -> B -> C.
	if !reflect.DeepEqual(g.CriticalPath, []string{"A", "B", "C"}) {
		t.Errorf("critical path = %v, want [A B C]", g.CriticalPath)
	}

	// The dropped edge stays on the graph, flagged, and no longer
	// counts as a scheduling dependency.
	if len(g.Edges) != 3 {
		t.Fatalf("expected all 3 edges retained in output, got %d", len(g.Edges))
	}
	var droppedIDs []string
	for _, e := range g.Edges {
		if e.Dropped {
			droppedIDs = append(droppedIDs, e.ID)
		}
	}
	if !reflect.DeepEqual(droppedIDs, []string{"e3"}) {
		t.Errorf("dropped edges = %v, want [e3]", droppedIDs)
	}
	if deps := g.HardDependenciesOf("A"); deps != nil {
		t.Errorf("A should have no scheduling dependencies after cycle break, got %v", deps)
	}
}

func TestAnalyze_SoftEdgePreferredWhenBreakingCycle(t *testing.T) {
	a := New()
	items := []models.WorkItem{item("A", 3), item("B", 5)}
	edges := []models.DependencyEdge{
		// The hard edge has lower confidence, but the soft edge must
		// be the one dropped.
		hardEdge("e1", "A", "B", 0.2),
		softEdge("e2", "B", "A", 0.9),
	}

	g, warnings, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if warnings[0].ItemID != "A" {
		t.Errorf("warning should reference the soft edge's target, got %q", warnings[0].ItemID)
	}
	// Critical path must respect the surviving hard edge.
	if !reflect.DeepEqual(g.CriticalPath, []string{"A", "B"}) {
		t.Errorf("critical path = %v, want [A B]", g.CriticalPath)
	}
}

func TestAnalyze_CriticalPathPicksHeaviestChain(t *testing.T) {
	a := New()
	items := []models.WorkItem{
		item("a", 2), item("b", 8), item("c", 3), item("d", 1),
	}
	edges := []models.DependencyEdge{
		hardEdge("e1", "a", "b", 0.9), // a -> b weighs 10
		hardEdge("e2", "a", "c", 0.9),
		hardEdge("e3", "c", "d", 0.9), // a -> c -> d weighs 6
	}

	g, _, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !reflect.DeepEqual(g.CriticalPath, []string{"a", "b"}) {
		t.Errorf("critical path = %v, want [a b]", g.CriticalPath)
	}
}

func TestAnalyze_CriticalPathIgnoresSoftEdges(t *testing.T) {
	a := New()
	items := []models.WorkItem{item("a", 2), item("b", 8), item("c", 9)}
	edges := []models.DependencyEdge{
		hardEdge("e1", "a", "b", 0.9),
		softEdge("e2", "b", "c", 0.9), // heavier chain, but advisory only
	}

	g, _, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !reflect.DeepEqual(g.CriticalPath, []string{"a", "b"}) {
		t.Errorf("critical path = %v, want [a b]", g.CriticalPath)
	}
}

func TestAnalyze_StructuralParentEdges(t *testing.T) {
	a := New()
	feature := item("feat", 5)
	feature.Type = models.ItemTypeFeature
	story := item("story", 3)
	story.ParentID = "feat"
	orphan := item("orphan", 2)
	orphan.ParentID = "gone" // parent not in snapshot, no edge

	g, _, err := a.Analyze([]models.WorkItem{feature, story, orphan}, nil)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 structural edge, got %d", len(g.Edges))
	}
	e := g.Edges[0]
	if e.SourceID != "feat" || e.TargetID != "story" {
		t.Errorf("structural edge %s -> %s, want feat -> story", e.SourceID, e.TargetID)
	}
	if e.Strength != models.StrengthHard || e.DetectionMethod != models.DetectionStructural {
		t.Errorf("structural edge should be hard/structural, got %s/%s", e.Strength, e.DetectionMethod)
	}
}

func TestAnalyze_Statistics(t *testing.T) {
	a := New()
	items := []models.WorkItem{
		item("hub", 1), item("a", 1), item("b", 1), item("c", 1), item("lone", 1),
	}
	edges := []models.DependencyEdge{
		hardEdge("e1", "hub", "a", 0.9),
		hardEdge("e2", "hub", "b", 0.9),
		softEdge("e3", "hub", "c", 0.9),
	}

	g, _, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	stats := g.Statistics
	if stats.HardDependencies != 2 || stats.SoftDependencies != 1 {
		t.Errorf("hard/soft = %d/%d, want 2/1", stats.HardDependencies, stats.SoftDependencies)
	}
	if stats.AverageDependencies != 0.6 {
		t.Errorf("averageDependencies = %v, want 0.6", stats.AverageDependencies)
	}
	if stats.IndependentItems != 1 {
		t.Errorf("independentItems = %d, want 1", stats.IndependentItems)
	}
	// hub has degree 3 against a mean of 1.2: the only outlier.
	if !reflect.DeepEqual(stats.HighDependencyItems, []string{"hub"}) {
		t.Errorf("highDependencyItems = %v, want [hub]", stats.HighDependencyItems)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := New()
	items := []models.WorkItem{
		item("a", 3), item("b", 3), item("c", 3), item("d", 3),
	}
	edges := []models.DependencyEdge{
		hardEdge("e1", "a", "b", 0.9),
		hardEdge("e2", "a", "c", 0.9),
		hardEdge("e3", "b", "d", 0.9),
		hardEdge("e4", "c", "d", 0.9),
	}

	first, _, err := a.Analyze(items, edges)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		g, _, err := a.Analyze(items, edges)
		if err != nil {
			t.Fatalf("Analyze() error: %v", err)
		}
		if !reflect.DeepEqual(g.CriticalPath, first.CriticalPath) {
			t.Fatalf("critical path changed between runs: %v vs %v", g.CriticalPath, first.CriticalPath)
		}
	}
	// Equal-weight paths a-b-d and a-c-d tie; lexicographic order
	// must pick the b branch.
	if !reflect.DeepEqual(first.CriticalPath, []string{"a", "b", "d"}) {
		t.Errorf("critical path = %v, want [a b d]", first.CriticalPath)
	}
}

func TestStronglyConnected_MultipleComponents(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	edges := []models.DependencyEdge{
		hardEdge("e1", "a", "b", 0.9),
		hardEdge("e2", "b", "a", 0.9),
		hardEdge("e3", "c", "d", 0.9),
		hardEdge("e4", "d", "c", 0.9),
	}

	comps := stronglyConnected(ids, edges)

	var cycles [][]string
	for _, c := range comps {
		if len(c) > 1 {
			cycles = append(cycles, c)
		}
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(cycles, want) {
		t.Errorf("cycles = %v, want %v", cycles, want)
	}
}
