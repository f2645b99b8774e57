package main

import (
	"testing"

	"github.com/traincrew/artplan/internal/backlog"
)

func TestExampleTemplatesParse(t *testing.T) {
	snap, err := backlog.Parse([]byte(exampleBacklogTemplate))
	if err != nil {
		t.Fatalf("example backlog does not parse: %v", err)
	}
	if len(snap.Items) == 0 || len(snap.Edges) == 0 || len(snap.Scenarios) == 0 {
		t.Errorf("example backlog is missing content: %+v", snap)
	}

	teams, err := backlog.ParseTeams([]byte(exampleTeamsTemplate))
	if err != nil {
		t.Fatalf("example teams do not parse: %v", err)
	}
	if len(teams) != 2 {
		t.Errorf("example teams = %d, want 2", len(teams))
	}
}

func TestFindScenario(t *testing.T) {
	scenarios := []backlog.ScenarioSpec{
		{Name: "reduced-capacity"},
		{Name: "stretch"},
	}

	if sc, ok := findScenario(scenarios, "stretch"); !ok || sc.Name != "stretch" {
		t.Errorf("findScenario(stretch) = %+v, %v", sc, ok)
	}
	if _, ok := findScenario(scenarios, "missing"); ok {
		t.Error("findScenario should not match unknown names")
	}
}
