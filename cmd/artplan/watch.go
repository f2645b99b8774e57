package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/traincrew/artplan/internal/backlog"
	"github.com/traincrew/artplan/internal/config"
	"github.com/traincrew/artplan/internal/engine"
	"github.com/traincrew/artplan/internal/tui"
)

var (
	watchBacklogPath string
	watchTeamsPath   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Replan live whenever the backlog changes",
	Long: `Open a live plan view that re-runs the planning pipeline every
time the backlog snapshot or team roster changes on disk.

Example:
  artplan watch -f backlog.yaml --teams teams.yaml`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchBacklogPath, "file", "f", "backlog.yaml", "Backlog snapshot file")
	watchCmd.Flags().StringVar(&watchTeamsPath, "teams", "teams.yaml", "Team roster file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	eng := engine.NewFromConfig(cfg)

	replan := func() tui.PlanUpdateMsg {
		res, err := replanOnce(eng)
		return tui.PlanUpdateMsg{Result: res, Err: err, At: time.Now()}
	}

	program, _ := tui.NewWatchProgram(replan)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the parent directories
	// and filter on the file names.
	watched := map[string]bool{
		filepath.Clean(watchBacklogPath): true,
		filepath.Clean(watchTeamsPath):   true,
	}
	dirs := map[string]bool{}
	for path := range watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(event.Name)] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					program.Send(tui.FileChangedMsg{Path: event.Name})
				}
			case <-watcher.Errors:
				// Keep watching
			}
		}
	}()

	_, err = program.Run()
	return err
}

func replanOnce(eng *engine.Engine) (*engine.PlanResult, error) {
	snap, err := backlog.Load(watchBacklogPath)
	if err != nil {
		return nil, err
	}
	teams, err := backlog.LoadTeams(watchTeamsPath)
	if err != nil {
		return nil, err
	}
	return eng.Run(context.Background(), engine.PlanRequest{
		PI:    snap.PI,
		Items: snap.Items,
		Edges: snap.Edges,
		Teams: teams,
	})
}
