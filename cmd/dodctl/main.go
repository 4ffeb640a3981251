// Package main implements the dodctl CLI for Definition-of-Done evaluation
// and automation.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

// errEvaluationFailed distinguishes "evaluated and the project failed" (exit
// 1) from execution errors (exit 2).
var errEvaluationFailed = errors.New("definition of done not satisfied")

var rootCmd = &cobra.Command{
	Use:   "dodctl",
	Short: "Definition-of-Done evaluation and automation",
	Long: `dodctl evaluates whether a project satisfies a Definition of Done: a
weighted, multi-criteria readiness assessment over testing, security, code
quality, documentation, performance, compliance, and delivery automation.
It can also scaffold the missing automation artifacts ("exoskeleton") and
drive remediation.

Exit codes: 0 the project passes, 1 the project was evaluated and failed,
2 execution error or unimplemented operation.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/dodctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format override (console, json)")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(exoskeletonCmd)
	rootCmd.AddCommand(automateCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(e2eCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errEvaluationFailed):
		os.Exit(1)
	default:
		os.Exit(2)
	}
}
