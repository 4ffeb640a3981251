package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/dodctl/internal/orchestrator"
)

var analyzeInsights bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Summarize a project's toolchain, repository state, and scaffolding",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var e2eCmd = &cobra.Command{
	Use:   "e2e <path>",
	Short: "Run end-to-end tests (not implemented)",
	Long: `Browser-driven end-to-end testing is outside current capability. The
command refuses with a not-implemented error instead of returning placeholder
results; the attempt is still recorded in telemetry.`,
	Args: cobra.ExactArgs(1),
	RunE: runE2E,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeInsights, "insights", false, "request AI-generated insights (not implemented)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	analysis, err := app.orch.AnalyzeProject(cmd.Context(), args[0], orchestrator.AnalyzeOptions{
		Insights: analyzeInsights,
	})
	if err != nil {
		return err
	}
	return printJSON(analysis)
}

func runE2E(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return app.orch.RunE2ETests(cmd.Context(), args[0])
}
