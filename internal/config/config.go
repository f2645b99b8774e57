// Package config handles configuration loading and management for
// artplan. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for artplan.
type Config struct {
	Decomposition DecompositionConfig `mapstructure:"decomposition"`
	Iterations    IterationsConfig    `mapstructure:"iterations"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Readiness     ReadinessConfig     `mapstructure:"readiness"`
	Store         StoreConfig         `mapstructure:"store"`
}

// DecompositionConfig holds work item splitting settings.
type DecompositionConfig struct {
	// Threshold is the largest point size allowed into planning.
	Threshold int `mapstructure:"threshold"`
}

// IterationsConfig holds iteration partitioning settings.
type IterationsConfig struct {
	// LengthDays is the fixed iteration length in days.
	LengthDays int `mapstructure:"length_days"`
	// ConfidenceFactor discounts velocity when computing available capacity.
	ConfidenceFactor float64 `mapstructure:"confidence_factor"`
}

// ScoringConfig holds WSJF scoring settings.
type ScoringConfig struct {
	// CriticalPathBoost multiplies risk/opportunity for critical-path items.
	CriticalPathBoost float64 `mapstructure:"critical_path_boost"`
	// NeutralValue substitutes for missing estimation inputs.
	NeutralValue float64 `mapstructure:"neutral_value"`
}

// ReadinessConfig weights the ART readiness components.
type ReadinessConfig struct {
	DependencyWeight float64 `mapstructure:"dependency_weight"`
	CapacityWeight   float64 `mapstructure:"capacity_weight"`
	ValueWeight      float64 `mapstructure:"value_weight"`
}

// StoreConfig holds plan history persistence settings.
type StoreConfig struct {
	// Path overrides the plan database location; empty uses the
	// project-local default.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ARTPLAN_*)
// 2. Project config (.artplan.yaml in current directory or parent)
// 3. User config (~/.config/artplan/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("ARTPLAN")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("decomposition.threshold", 5)

	v.SetDefault("iterations.length_days", 14)
	v.SetDefault("iterations.confidence_factor", 0.85)

	v.SetDefault("scoring.critical_path_boost", 1.20)
	v.SetDefault("scoring.neutral_value", 3.0)

	v.SetDefault("readiness.dependency_weight", 0.4)
	v.SetDefault("readiness.capacity_weight", 0.3)
	v.SetDefault("readiness.value_weight", 0.3)

	v.SetDefault("store.path", "")
}

// getUserConfigDir returns the XDG config directory for artplan.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "artplan")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "artplan")
	}
	return filepath.Join(home, ".config", "artplan")
}

// findProjectConfig searches for .artplan.yaml in the current
// directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".artplan.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
