package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/traincrew/artplan/internal/config"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a recorded plan run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the stored plan as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runID := args[0]
	plan, err := db.GetPlan(runID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("no run with id %q", runID)
	}

	if showJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	run, err := db.GetRun(runID)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Run %s\n", runID)
	if run != nil {
		fmt.Printf("Recorded %s", run.CreatedAt.Local().Format("2006-01-02 15:04"))
		if run.Scenario != "" {
			fmt.Printf(" (scenario: %s)", run.Scenario)
		}
		fmt.Println()
	}
	fmt.Println()

	for _, it := range plan.Iterations {
		bold.Printf("%s  %s – %s\n", it.ID, it.StartDate.Format("2006-01-02"), it.EndDate.Format("2006-01-02"))
		for _, tc := range it.Capacity {
			fmt.Printf("  %-12s %5.1f / %5.1f points\n", tc.TeamID, tc.AllocatedPoints, tc.AvailableCapacity)
		}
		for _, item := range it.AllocatedWork {
			fmt.Printf("    %-14s %-40s %s\n", item.WorkItem.ID, item.WorkItem.Title, item.AssignedTeam)
		}
		fmt.Println()
	}

	traces, err := db.GetTraces(runID)
	if err != nil {
		return err
	}
	if len(traces) > 0 {
		bold.Println("Decomposition")
		for _, tr := range traces {
			fmt.Printf("  %s → %s\n", tr.ParentID, tr.ChildID)
		}
		fmt.Println()
	}

	warnings, err := db.GetWarnings(runID)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printStatus("⚠", fmt.Sprintf("[%s] %s", w.Kind, w.Message), color.FgYellow)
	}

	return nil
}
