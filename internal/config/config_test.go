package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Decomposition.Threshold != 5 {
		t.Errorf("threshold = %d, want 5", cfg.Decomposition.Threshold)
	}
	if cfg.Iterations.LengthDays != 14 {
		t.Errorf("length_days = %d, want 14", cfg.Iterations.LengthDays)
	}
	if cfg.Iterations.ConfidenceFactor != 0.85 {
		t.Errorf("confidence_factor = %v, want 0.85", cfg.Iterations.ConfidenceFactor)
	}
	if cfg.Scoring.CriticalPathBoost != 1.20 {
		t.Errorf("critical_path_boost = %v, want 1.20", cfg.Scoring.CriticalPathBoost)
	}
	if w := cfg.Readiness; w.DependencyWeight != 0.4 || w.CapacityWeight != 0.3 || w.ValueWeight != 0.3 {
		t.Errorf("readiness weights = %+v, want 0.4/0.3/0.3", w)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
decomposition:
  threshold: 8
iterations:
  length_days: 7
  confidence_factor: 1.0
scoring:
  critical_path_boost: 1.5
store:
  path: /tmp/plans.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.Decomposition.Threshold != 8 {
		t.Errorf("threshold = %d, want 8", cfg.Decomposition.Threshold)
	}
	if cfg.Iterations.LengthDays != 7 {
		t.Errorf("length_days = %d, want 7", cfg.Iterations.LengthDays)
	}
	if cfg.Scoring.CriticalPathBoost != 1.5 {
		t.Errorf("critical_path_boost = %v, want 1.5", cfg.Scoring.CriticalPathBoost)
	}
	if cfg.Store.Path != "/tmp/plans.db" {
		t.Errorf("store path = %q, want /tmp/plans.db", cfg.Store.Path)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
