package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/dodctl/internal/config"
	"github.com/fyrsmithlabs/dodctl/internal/exoskeleton"
	"github.com/fyrsmithlabs/dodctl/internal/orchestrator"
	"github.com/fyrsmithlabs/dodctl/internal/report"
)

var (
	automateCriteria        []string
	automateAutoFix         bool
	automateTemplate        string
	automateSkipExoskeleton bool
	automateThreshold       float64
	automateFormat          string
	automateOutput          string
)

var automateCmd = &cobra.Command{
	Use:   "automate <path>",
	Short: "Run the complete automation pipeline",
	Long: `Automate drives the full state machine: validate every criterion,
optionally auto-fix, score, scaffold the exoskeleton, and report.

Examples:
  dodctl automate . --auto-fix
  dodctl automate . --template enterprise --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAutomate,
}

func init() {
	f := automateCmd.Flags()
	f.StringSliceVar(&automateCriteria, "criteria", nil, "restrict evaluation to these criteria")
	f.BoolVar(&automateAutoFix, "auto-fix", false, "apply validator fixes and re-evaluate once")
	f.StringVar(&automateTemplate, "template", "", "exoskeleton template (default from config)")
	f.BoolVar(&automateSkipExoskeleton, "skip-exoskeleton", false, "evaluate and report without scaffolding")
	f.Float64Var(&automateThreshold, "threshold", 0, "weighted-score pass threshold (default from config)")
	f.StringVar(&automateFormat, "format", "table", "report format: table, json, markdown")
	f.StringVar(&automateOutput, "output", "", "write the report to a file instead of stdout")
}

func runAutomate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(automateFormat)
	if err != nil {
		return err
	}
	crits, err := parseCriteria(automateCriteria)
	if err != nil {
		return err
	}

	app, cleanup, err := newApp(cmd.Context(), func(cfg *config.Config) {
		if cmd.Flags().Changed("threshold") {
			cfg.Evaluation.PassThreshold = automateThreshold
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()

	if len(crits) == 0 {
		if crits, err = parseCriteria(app.cfg.Evaluation.Criteria); err != nil {
			return err
		}
	}

	template := automateTemplate
	if template == "" {
		template = app.cfg.Exoskeleton.Template
	}

	result, err := app.orch.ExecuteCompleteAutomation(cmd.Context(), args[0], orchestrator.AutomationOptions{
		Evaluate: orchestrator.EvaluateOptions{
			Criteria: crits,
			Parallel: app.cfg.Evaluation.Parallel,
			AutoFix:  automateAutoFix || app.cfg.Evaluation.AutoFix,
		},
		Exoskeleton:     exoskeleton.Options{Template: template},
		SkipExoskeleton: automateSkipExoskeleton,
	})
	if err != nil {
		return err
	}

	if result.Exoskeleton != nil {
		printGenerationResult(result.Exoskeleton)
	}

	out, closeOut, err := openOutput(automateOutput)
	if err != nil {
		return err
	}
	if err := report.Write(out, result.Report, format); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if !result.Report.OverallPass {
		return fmt.Errorf("%w: %s", errEvaluationFailed, result.Report.GatingReason)
	}
	return nil
}
