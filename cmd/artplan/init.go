package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize an artplan project",
	Long: `Initialize a directory for use with artplan.

This command sets up everything needed to plan a Program Increment:
  - Creates the .artplan directory for plan history
  - Creates an .artplan.yaml configuration template
  - Creates example backlog.yaml and teams.yaml snapshots

The directory argument is optional and defaults to the current directory.

Examples:
  artplan init              # Initialize current directory
  artplan init ./myproject  # Initialize specific directory
  artplan init --force      # Overwrite existing example files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing artplan in %s...\n\n", absPath)

	artplanDir := filepath.Join(absPath, ".artplan")
	if _, err := os.Stat(artplanDir); err == nil && !initForce {
		fmt.Printf("Directory already initialized. Use --force to reinitialize.\n")
		return nil
	}
	if err := os.MkdirAll(artplanDir, 0755); err != nil {
		return fmt.Errorf("creating .artplan directory: %w", err)
	}
	printStatus("✓", "Created .artplan directory", color.FgGreen)

	files := []struct {
		name    string
		content string
	}{
		{".artplan.yaml", projectConfigTemplate},
		{"backlog.yaml", exampleBacklogTemplate},
		{"teams.yaml", exampleTeamsTemplate},
	}
	for _, f := range files {
		path := filepath.Join(absPath, f.name)
		if _, err := os.Stat(path); err == nil && !initForce {
			printStatus("⚠", fmt.Sprintf("%s already exists, skipping", f.name), color.FgYellow)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}
		printStatus("✓", fmt.Sprintf("Created %s", f.name), color.FgGreen)
	}

	fmt.Println()
	printStatus("✓", "Ready to plan", color.FgGreen)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit backlog.yaml and teams.yaml with your PI data")
	fmt.Println("  2. Run: artplan plan -f backlog.yaml --teams teams.yaml")
	fmt.Println("  3. Run: artplan watch to replan live while editing")

	return nil
}

const projectConfigTemplate = `# artplan project configuration
decomposition:
  threshold: 5

iterations:
  length_days: 14
  confidence_factor: 0.85

scoring:
  critical_path_boost: 1.20
  neutral_value: 3.0

readiness:
  dependency_weight: 0.4
  capacity_weight: 0.3
  value_weight: 0.3
`

const exampleBacklogTemplate = `# Program Increment backlog snapshot
pi:
  id: pi-1
  name: "PI 2025.1"
  start_date: 2025-01-06
  end_date: 2025-03-02

items:
  - id: feat-checkout
    type: feature
    title: Checkout flow
    description: End to end checkout with payment capture
    points: 13
    attributes:
      business_value: 8
      time_criticality: 5
      risk_opportunity: 3
  - id: story-cart
    type: story
    title: Cart service API
    points: 3
    attributes:
      business_value: 5
      time_criticality: 5
      risk_opportunity: 5

dependencies:
  - source: story-cart
    target: feat-checkout
    strength: hard
    confidence: 0.9

scenarios:
  - name: reduced-capacity
    velocity_factor: 0.8
`

const exampleTeamsTemplate = `# Release train team roster
teams:
  - id: team-alpha
    name: Alpha
    member_count: 5
    average_velocity: 30
    specializations: [api, payments]
  - id: team-bravo
    name: Bravo
    member_count: 4
    average_velocity: 25
    capacity_factor: 0.9
    specializations: [frontend, checkout]
`
