package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/dodctl/internal/exoskeleton"
)

var (
	exoTemplate string
	exoForce    bool
	exoDryRun   bool
)

var exoskeletonCmd = &cobra.Command{
	Use:   "exoskeleton <path>",
	Short: "Scaffold automation artifacts into a project",
	Long: `Exoskeleton materializes the named template's artifacts (pipeline
definitions, policy stubs, workflow files) into the project tree. Existing
files are skipped unless --force; --dry-run previews every decision without
writing anything.

Available templates: ` + templateList() + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runExoskeleton,
}

var (
	pipelineTemplate string
	pipelineForce    bool
	pipelineDryRun   bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <path>",
	Short: "Generate only the CI pipeline artifacts",
	Long: `Pipeline scaffolds the pipeline subset of a template: the automation
pipeline definitions and the CI workflow stub. The project is not marked as
fully scaffolded.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	f := exoskeletonCmd.Flags()
	f.StringVar(&exoTemplate, "template", "", "template name (default from config)")
	f.BoolVar(&exoForce, "force", false, "overwrite existing artifacts")
	f.BoolVar(&exoDryRun, "dry-run", false, "report decisions without writing")

	pf := pipelineCmd.Flags()
	pf.StringVar(&pipelineTemplate, "template", "standard", "template whose pipelines to generate")
	pf.BoolVar(&pipelineForce, "force", false, "overwrite existing artifacts")
	pf.BoolVar(&pipelineDryRun, "dry-run", false, "report decisions without writing")
}

func templateList() string {
	names := exoskeleton.TemplateNames()
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func runExoskeleton(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	template := exoTemplate
	if template == "" {
		template = app.cfg.Exoskeleton.Template
	}

	result, err := app.orch.CreateExoskeleton(cmd.Context(), args[0], exoskeleton.Options{
		Template: template,
		Force:    exoForce,
		DryRun:   exoDryRun,
	})
	if err != nil {
		return err
	}
	printGenerationResult(result)
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := app.orch.GeneratePipeline(cmd.Context(), args[0], exoskeleton.Options{
		Template: pipelineTemplate,
		Force:    pipelineForce,
		DryRun:   pipelineDryRun,
	})
	if err != nil {
		return err
	}
	printGenerationResult(result)
	return nil
}

func printGenerationResult(result *exoskeleton.Result) {
	prefix := ""
	if result.DryRun {
		prefix = "[dry-run] "
	}
	for _, d := range result.Decisions {
		fmt.Fprintf(os.Stdout, "%s%-9s %s\n", prefix, d.Action, d.Path)
	}
	fmt.Fprintf(os.Stdout, "%s%d files created, %d skipped, %d directories created\n",
		prefix, result.FilesCreated, result.FilesSkipped, result.DirectoriesCreated)
}
