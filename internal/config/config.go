// Package config provides configuration loading for dodctl.
package config

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/dodctl/internal/logging"
	"github.com/fyrsmithlabs/dodctl/internal/telemetry"
)

// Config is the root configuration for dodctl.
type Config struct {
	Logging     logging.Config    `koanf:"logging"`
	Telemetry   telemetry.Config  `koanf:"telemetry"`
	Evaluation  EvaluationConfig  `koanf:"evaluation"`
	Exoskeleton ExoskeletonConfig `koanf:"exoskeleton"`
}

// EvaluationConfig controls criteria evaluation runs.
type EvaluationConfig struct {
	// PassThreshold is the minimum weighted score, 0-100.
	PassThreshold float64 `koanf:"pass_threshold"`
	// Parallel runs validators concurrently.
	Parallel bool `koanf:"parallel"`
	// MaxWorkers bounds concurrent validators when Parallel is set.
	MaxWorkers int `koanf:"max_workers"`
	// ValidatorTimeout bounds a single validator run.
	ValidatorTimeout time.Duration `koanf:"validator_timeout"`
	// Criteria restricts evaluation to the named criteria. Empty means all.
	Criteria []string `koanf:"criteria"`
	// AutoFix applies validator fixes and re-evaluates once.
	AutoFix bool `koanf:"auto_fix"`
}

// ExoskeletonConfig controls scaffolding generation.
type ExoskeletonConfig struct {
	Template string `koanf:"template"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
		Evaluation: EvaluationConfig{
			PassThreshold:    80,
			Parallel:         true,
			MaxWorkers:       4,
			ValidatorTimeout: 30 * time.Second,
		},
		Exoskeleton: ExoskeletonConfig{
			Template: "standard",
		},
	}
}

// Validate checks the full configuration tree.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if c.Evaluation.PassThreshold < 0 || c.Evaluation.PassThreshold > 100 {
		return fmt.Errorf("evaluation: pass_threshold must be in [0,100], got %v", c.Evaluation.PassThreshold)
	}
	if c.Evaluation.MaxWorkers < 1 {
		return fmt.Errorf("evaluation: max_workers must be >= 1, got %d", c.Evaluation.MaxWorkers)
	}
	if c.Evaluation.ValidatorTimeout <= 0 {
		return fmt.Errorf("evaluation: validator_timeout must be > 0, got %v", c.Evaluation.ValidatorTimeout)
	}
	if c.Exoskeleton.Template == "" {
		return fmt.Errorf("exoskeleton: template cannot be empty")
	}
	return nil
}
