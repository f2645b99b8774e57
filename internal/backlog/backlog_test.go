package backlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/traincrew/artplan/pkg/models"
)

const validBacklog = `
pi:
  id: pi-1
  name: "PI 2025.1"
  start_date: 2025-01-06
  end_date: 2025-03-02
items:
  - id: feat-1
    type: feature
    title: Checkout flow
    points: 13
    attributes:
      business_value: 8
      time_criticality: 5
      risk_opportunity: 3
  - id: story-1
    type: story
    title: Cart service
    points: 3
dependencies:
  - source: feat-1
    target: story-1
    strength: hard
    confidence: 0.9
scenarios:
  - name: reduced-capacity
    velocity_factor: 0.8
    capacity_overrides:
      team-a: 0.5
`

func TestParseValidBacklog(t *testing.T) {
	snap, err := Parse([]byte(validBacklog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if snap.PI.ID != "pi-1" {
		t.Errorf("pi id = %q, want pi-1", snap.PI.ID)
	}
	if snap.PI.EndDate.Sub(snap.PI.StartDate).Hours() != 55*24 {
		t.Errorf("unexpected PI span: %v to %v", snap.PI.StartDate, snap.PI.EndDate)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(snap.Items))
	}
	if snap.Items[0].Attributes["business_value"] != 8 {
		t.Errorf("attributes not carried through: %v", snap.Items[0].Attributes)
	}
	if len(snap.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(snap.Edges))
	}
	edge := snap.Edges[0]
	if edge.ID != "dep-feat-1-story-1" {
		t.Errorf("generated edge id = %q", edge.ID)
	}
	if edge.Type != models.EdgeRequires || edge.DetectionMethod != models.DetectionManual {
		t.Errorf("edge defaults not applied: %+v", edge)
	}
	if len(snap.Scenarios) != 1 || snap.Scenarios[0].Name != "reduced-capacity" {
		t.Fatalf("scenarios = %+v", snap.Scenarios)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "malformed yaml",
			yaml: "pi: [unclosed",
		},
		{
			name: "missing pi id",
			yaml: "pi:\n  start_date: 2025-01-06\n  end_date: 2025-03-02\n",
		},
		{
			name: "bad date format",
			yaml: "pi:\n  id: pi-1\n  start_date: 06/01/2025\n  end_date: 2025-03-02\n",
		},
		{
			name: "item without id",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\nitems:\n  - type: story\n    points: 3\n",
		},
		{
			name: "unknown item type",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\nitems:\n  - id: a\n    type: saga\n    points: 3\n",
		},
		{
			name: "duplicate item ids",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\nitems:\n  - id: a\n    type: story\n  - id: a\n    type: story\n",
		},
		{
			name: "negative points",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\nitems:\n  - id: a\n    type: story\n    points: -1\n",
		},
		{
			name: "edge missing target",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\ndependencies:\n  - source: a\n",
		},
		{
			name: "edge confidence above one",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\ndependencies:\n  - source: a\n    target: b\n    confidence: 1.5\n",
		},
		{
			name: "unknown strength",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\ndependencies:\n  - source: a\n    target: b\n    strength: firm\n",
		},
		{
			name: "scenario without name",
			yaml: "pi:\n  id: pi-1\n  start_date: 2025-01-06\n  end_date: 2025-03-02\nscenarios:\n  - velocity_factor: 0.8\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, models.ErrInputContract) {
				t.Errorf("error %v does not wrap ErrInputContract", err)
			}
		})
	}
}

func TestParseTeams(t *testing.T) {
	data := []byte(`
teams:
  - id: team-a
    name: Alpha
    member_count: 5
    average_velocity: 30
    specializations: [api, payments]
  - id: team-b
    name: Bravo
    member_count: 4
    average_velocity: 25
    capacity_factor: 0.8
`)
	teams, err := ParseTeams(data)
	if err != nil {
		t.Fatalf("ParseTeams() error = %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(teams))
	}
	if teams[0].CapacityFactor != 1.0 {
		t.Errorf("default capacity factor = %v, want 1.0", teams[0].CapacityFactor)
	}
	if teams[1].CapacityFactor != 0.8 {
		t.Errorf("capacity factor = %v, want 0.8", teams[1].CapacityFactor)
	}
	if !teams[0].HasSpecialization("payments") {
		t.Errorf("specializations not carried through: %v", teams[0].Specializations)
	}
}

func TestParseTeamsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty roster", yaml: "teams: []\n"},
		{name: "missing id", yaml: "teams:\n  - name: Alpha\n"},
		{name: "duplicate id", yaml: "teams:\n  - id: a\n  - id: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTeams([]byte(tt.yaml))
			if !errors.Is(err, models.ErrInputContract) {
				t.Errorf("error %v does not wrap ErrInputContract", err)
			}
		})
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backlog.yaml")
	if err := os.WriteFile(path, []byte(validBacklog), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Items) != 2 {
		t.Errorf("items = %d, want 2", len(snap.Items))
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyScenario(t *testing.T) {
	teams := []models.Team{
		{ID: "team-a", AverageVelocity: 30, CapacityFactor: 1.0},
		{ID: "team-b", AverageVelocity: 20, CapacityFactor: 1.0},
	}
	sc := ScenarioSpec{
		Name:              "reduced",
		VelocityFactor:    0.5,
		CapacityOverrides: map[string]float64{"team-b": 0.6},
	}

	out := ApplyScenario(teams, sc)

	if out[0].AverageVelocity != 15 || out[1].AverageVelocity != 10 {
		t.Errorf("velocity factor not applied: %v, %v", out[0].AverageVelocity, out[1].AverageVelocity)
	}
	if out[0].CapacityFactor != 1.0 || out[1].CapacityFactor != 0.6 {
		t.Errorf("capacity overrides wrong: %v, %v", out[0].CapacityFactor, out[1].CapacityFactor)
	}
	if teams[0].AverageVelocity != 30 || teams[1].CapacityFactor != 1.0 {
		t.Errorf("input teams mutated: %+v", teams)
	}
}
