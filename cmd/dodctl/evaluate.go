package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/dodctl/internal/config"
	"github.com/fyrsmithlabs/dodctl/internal/orchestrator"
	"github.com/fyrsmithlabs/dodctl/internal/report"
)

var (
	evaluateCriteria  []string
	evaluateParallel  bool
	evaluateAutoFix   bool
	evaluateThreshold float64
	evaluateFormat    string
	evaluateOutput    string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <path>",
	Short: "Evaluate a project against the Definition of Done",
	Long: `Evaluate runs every readiness criterion against the project, combines the
results into a weighted score, and applies the tiered gating rule.

Examples:
  # Evaluate the current directory
  dodctl evaluate .

  # Only the critical criteria, with remediation
  dodctl evaluate . --criteria testing,security,code_quality --auto-fix

  # Machine-readable report
  dodctl evaluate . --format json --output dod-report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringSliceVar(&evaluateCriteria, "criteria", nil, "restrict evaluation to these criteria")
	f.BoolVar(&evaluateParallel, "parallel", true, "run validators concurrently")
	f.BoolVar(&evaluateAutoFix, "auto-fix", false, "apply validator fixes and re-evaluate once")
	f.Float64Var(&evaluateThreshold, "threshold", 0, "weighted-score pass threshold (default from config)")
	f.StringVar(&evaluateFormat, "format", "table", "report format: table, json, markdown")
	f.StringVar(&evaluateOutput, "output", "", "write the report to a file instead of stdout")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(evaluateFormat)
	if err != nil {
		return err
	}
	crits, err := parseCriteria(evaluateCriteria)
	if err != nil {
		return err
	}

	app, cleanup, err := newApp(cmd.Context(), func(cfg *config.Config) {
		if cmd.Flags().Changed("threshold") {
			cfg.Evaluation.PassThreshold = evaluateThreshold
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

	parallel := app.cfg.Evaluation.Parallel
	if cmd.Flags().Changed("parallel") {
		parallel = evaluateParallel
	}

	rep, err := app.orch.ValidateCriteria(cmd.Context(), args[0], orchestrator.EvaluateOptions{
		Criteria: crits,
		Parallel: parallel,
		AutoFix:  evaluateAutoFix || app.cfg.Evaluation.AutoFix,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(evaluateOutput)
	if err != nil {
		return err
	}
	if err := report.Write(out, rep, format); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	if !rep.OverallPass {
		return fmt.Errorf("%w: %s", errEvaluationFailed, rep.GatingReason)
	}
	return nil
}
