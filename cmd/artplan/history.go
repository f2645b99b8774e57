package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traincrew/artplan/internal/config"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded plan runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs. Run 'artplan plan' first.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-16s %-10s %-6s %s\n", "RUN", "CREATED", "PI", "READINESS", "ITEMS", "SCENARIO")
	for _, r := range runs {
		scenario := r.Scenario
		if scenario == "" {
			scenario = "-"
		}
		fmt.Printf("%-36s %-20s %-16s %-10.0f %-6d %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.PIID,
			r.ReadinessScore*100,
			r.TotalItems,
			scenario)
	}
	return nil
}
