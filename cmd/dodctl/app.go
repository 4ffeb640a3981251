package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/dodctl/internal/config"
	"github.com/fyrsmithlabs/dodctl/internal/criteria"
	"github.com/fyrsmithlabs/dodctl/internal/logging"
	"github.com/fyrsmithlabs/dodctl/internal/orchestrator"
	"github.com/fyrsmithlabs/dodctl/internal/scoring"
	"github.com/fyrsmithlabs/dodctl/internal/telemetry"
	"github.com/fyrsmithlabs/dodctl/internal/validators"
)

// app bundles the wired components behind every command.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
	orch   *orchestrator.Orchestrator
}

// newApp loads configuration, applies flag overrides, and wires the
// orchestrator. The returned cleanup flushes telemetry and logs.
func newApp(ctx context.Context, overrides ...func(*config.Config)) (*app, func(), error) {
	cfg, err := config.LoadWithFile(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	if flagLogLevel != "" {
		var level zapcore.Level
		if err := level.Set(flagLogLevel); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
		}
		cfg.Logging.Level = level
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	tel, err := telemetry.New(ctx, &cfg.Telemetry)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(sctx)
		_ = logger.Sync()
	}

	registry, err := criteria.NewRegistry(validators.DefaultSet())
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Registry:   registry,
		Engine:     scoring.NewEngine(cfg.Evaluation.PassThreshold),
		Recorder:   telemetry.NewActionRecorder(tel),
		Logger:     logger,
		Evaluation: cfg.Evaluation,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{cfg: cfg, logger: logger, tel: tel, orch: orch}, cleanup, nil
}

// parseCriteria converts --criteria names, validating against the table.
func parseCriteria(names []string) ([]criteria.Criterion, error) {
	out := make([]criteria.Criterion, 0, len(names))
	for _, name := range names {
		c := criteria.Criterion(name)
		if !criteria.Valid(c) {
			return nil, fmt.Errorf("unknown criterion %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}
