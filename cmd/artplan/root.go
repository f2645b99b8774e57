package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/traincrew/artplan/internal/engine"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "artplan",
	Short: "Agile Release Train PI planning engine",
	Long: `Artplan turns a backlog snapshot and a team roster into a full
Program Increment plan.

It decomposes oversized work items into iteration-sized children,
analyzes the dependency graph (detecting and breaking circular
dependencies, computing the critical path), scores every item with
WSJF, and allocates work to iterations under team capacity and
dependency constraints.

Core capabilities:
- Splits oversized features into plannable stories
- Detects dependency cycles and drops the weakest edge
- Ranks the backlog by weighted-shortest-job-first value
- Schedules iterations respecting hard dependencies and capacity
- Scores plan readiness and records every run for later review`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline stage details to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// applyVerbosity attaches a stderr debug logger when --verbose is set.
func applyVerbosity(eng *engine.Engine) {
	if verbose {
		eng.SetDebugLog(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		})
	}
}
