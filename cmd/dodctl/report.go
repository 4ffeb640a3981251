package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/dodctl/internal/orchestrator"
	"github.com/fyrsmithlabs/dodctl/internal/report"
)

var (
	reportCriteria []string
	reportFormat   string
	reportOutput   string
)

var reportCmd = &cobra.Command{
	Use:   "report <path>",
	Short: "Evaluate a project and write the report",
	Long: `Report evaluates the project and renders the result in the requested
representation. Unlike evaluate, a failing verdict still exits 0 when the
report itself was produced; use evaluate for gating.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringSliceVar(&reportCriteria, "criteria", nil, "restrict evaluation to these criteria")
	f.StringVar(&reportFormat, "format", "markdown", "report format: table, json, markdown")
	f.StringVar(&reportOutput, "output", "", "write the report to a file instead of stdout")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	crits, err := parseCriteria(reportCriteria)
	if err != nil {
		return err
	}

	app, cleanup, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if len(crits) == 0 {
		if crits, err = parseCriteria(app.cfg.Evaluation.Criteria); err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(reportOutput)
	if err != nil {
		return err
	}

	_, err = app.orch.GenerateReport(cmd.Context(), args[0], orchestrator.ReportOptions{
		Evaluate: orchestrator.EvaluateOptions{
			Criteria: crits,
			Parallel: app.cfg.Evaluation.Parallel,
		},
		Format: format,
		Output: out,
	})
	if err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}
