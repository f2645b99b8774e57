package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/traincrew/artplan/internal/backlog"
	"github.com/traincrew/artplan/internal/config"
	"github.com/traincrew/artplan/internal/engine"
	"github.com/traincrew/artplan/internal/state"
	"github.com/traincrew/artplan/pkg/models"
)

var (
	planBacklogPath  string
	planTeamsPath    string
	planScenario     string
	planAllScenarios bool
	planJSONPath     string
	planNoStore      bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a Program Increment from a backlog snapshot",
	Long: `Run the full planning pipeline over a backlog snapshot and team
roster, print the resulting plan, and record the run.

Examples:
  artplan plan -f backlog.yaml --teams teams.yaml
  artplan plan -f backlog.yaml --teams teams.yaml --scenario reduced-capacity
  artplan plan -f backlog.yaml --teams teams.yaml --all-scenarios
  artplan plan -f backlog.yaml --teams teams.yaml --json plan.json`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planBacklogPath, "file", "f", "backlog.yaml", "Backlog snapshot file")
	planCmd.Flags().StringVar(&planTeamsPath, "teams", "teams.yaml", "Team roster file")
	planCmd.Flags().StringVar(&planScenario, "scenario", "", "Plan a single named scenario from the backlog file")
	planCmd.Flags().BoolVar(&planAllScenarios, "all-scenarios", false, "Plan every named scenario concurrently and compare")
	planCmd.Flags().StringVar(&planJSONPath, "json", "", "Write the plan as JSON to the given file ('-' for stdout)")
	planCmd.Flags().BoolVar(&planNoStore, "no-store", false, "Skip recording the run in plan history")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	snap, err := backlog.Load(planBacklogPath)
	if err != nil {
		return err
	}
	teams, err := backlog.LoadTeams(planTeamsPath)
	if err != nil {
		return err
	}

	eng := engine.NewFromConfig(cfg)
	applyVerbosity(eng)
	ctx := context.Background()

	if planAllScenarios {
		return runAllScenarios(ctx, eng, snap, teams)
	}

	scenarioName := ""
	if planScenario != "" {
		sc, ok := findScenario(snap.Scenarios, planScenario)
		if !ok {
			return fmt.Errorf("scenario %q not defined in %s", planScenario, planBacklogPath)
		}
		teams = backlog.ApplyScenario(teams, sc)
		scenarioName = sc.Name
	}

	res, err := eng.Run(ctx, engine.PlanRequest{
		PI:    snap.PI,
		Items: snap.Items,
		Edges: snap.Edges,
		Teams: teams,
	})
	if err != nil {
		return err
	}

	printPlan(res, scenarioName)

	if planJSONPath != "" {
		if err := writePlanJSON(res.Plan, planJSONPath); err != nil {
			return err
		}
	}

	if !planNoStore {
		runID, err := storeRun(cfg, scenarioName, res)
		if err != nil {
			printStatus("⚠", fmt.Sprintf("Could not record run: %v", err), color.FgYellow)
		} else {
			printStatus("✓", fmt.Sprintf("Recorded run %s", runID), color.FgGreen)
		}
	}

	return nil
}

func findScenario(scenarios []backlog.ScenarioSpec, name string) (backlog.ScenarioSpec, bool) {
	for _, sc := range scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return backlog.ScenarioSpec{}, false
}

func runAllScenarios(ctx context.Context, eng *engine.Engine, snap *backlog.Snapshot, teams []models.Team) error {
	scenarios := []engine.Scenario{
		{Name: "baseline", Request: engine.PlanRequest{PI: snap.PI, Items: snap.Items, Edges: snap.Edges, Teams: teams}},
	}
	for _, sc := range snap.Scenarios {
		scenarios = append(scenarios, engine.Scenario{
			Name: sc.Name,
			Request: engine.PlanRequest{
				PI:    snap.PI,
				Items: snap.Items,
				Edges: snap.Edges,
				Teams: backlog.ApplyScenario(teams, sc),
			},
		})
	}

	results := eng.RunScenarios(ctx, scenarios)

	bold := color.New(color.Bold)
	bold.Println("Scenario comparison")
	fmt.Printf("%-20s %-10s %-8s %-8s %s\n", "SCENARIO", "READINESS", "ITEMS", "POINTS", "WARNINGS")
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%-20s %s\n", r.Name, color.RedString("failed: %v", r.Err))
			continue
		}
		plan := r.Result.Plan
		fmt.Printf("%-20s %-10.0f %-8d %-8.0f %d\n",
			r.Name,
			plan.ARTReadiness.ReadinessScore*100,
			plan.Summary.TotalItems,
			plan.Summary.TotalPoints,
			len(plan.Warnings))
	}
	return nil
}

func printPlan(res *engine.PlanResult, scenario string) {
	plan := res.Plan
	bold := color.New(color.Bold)

	title := fmt.Sprintf("Plan for %s", plan.PI.Name)
	if scenario != "" {
		title += fmt.Sprintf(" (scenario: %s)", scenario)
	}
	bold.Println(title)
	fmt.Println()

	score := plan.ARTReadiness.ReadinessScore
	scoreLine := fmt.Sprintf("Readiness %.0f%% (deps %.0f%% / capacity %.0f%% / value %.0f%%)",
		score*100,
		plan.ARTReadiness.Components.DependencySatisfaction*100,
		plan.ARTReadiness.Components.CapacityBalance*100,
		plan.ARTReadiness.Components.ValueDeliveryConfidence*100)
	switch {
	case score >= 0.8:
		printStatus("✓", scoreLine, color.FgGreen)
	case score >= 0.5:
		printStatus("⚠", scoreLine, color.FgYellow)
	default:
		printStatus("✗", scoreLine, color.FgRed)
	}

	fmt.Printf("%d items, %.0f points across %d iterations\n",
		plan.Summary.TotalItems, plan.Summary.TotalPoints, len(plan.Iterations))
	if len(res.Graph.CriticalPath) > 0 {
		fmt.Printf("Critical path: %v\n", res.Graph.CriticalPath)
	}
	fmt.Println()

	for _, it := range plan.Iterations {
		bold.Printf("%s  %s – %s\n", it.ID, it.StartDate.Format("2006-01-02"), it.EndDate.Format("2006-01-02"))
		for _, tc := range it.Capacity {
			line := fmt.Sprintf("  %-12s %5.1f / %5.1f points", tc.TeamID, tc.AllocatedPoints, tc.AvailableCapacity)
			if tc.IsOverAllocated {
				fmt.Println(line + color.RedString("  OVER-ALLOCATED"))
			} else {
				fmt.Println(line)
			}
		}
		for _, item := range it.AllocatedWork {
			fmt.Printf("    %-14s %-40s %-10s wsjf %.2f\n",
				item.WorkItem.ID, item.WorkItem.Title, item.AssignedTeam, item.WorkItem.WSJFScore)
		}
		fmt.Println()
	}

	if len(plan.Warnings) > 0 {
		bold.Println("Warnings")
		for _, w := range plan.Warnings {
			printStatus("⚠", fmt.Sprintf("[%s] %s", w.Kind, w.Message), color.FgYellow)
		}
		fmt.Println()
	}
}

func writePlanJSON(plan *models.ARTPlan, path string) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write plan json: %w", err)
	}
	printStatus("✓", fmt.Sprintf("Wrote plan to %s", path), color.FgGreen)
	return nil
}

func openStore(cfg *config.Config) (*state.DB, error) {
	path := cfg.Store.Path
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		path = state.ProjectDBPath(cwd)
	}
	db, err := state.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func storeRun(cfg *config.Config, scenario string, res *engine.PlanResult) (string, error) {
	db, err := openStore(cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	runID := uuid.NewString()
	if err := db.SaveRun(runID, scenario, res.Plan, res.Traces, time.Now()); err != nil {
		return "", err
	}
	return runID, nil
}
