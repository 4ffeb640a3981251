package orchestrator

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/fyrsmithlabs/dodctl/internal/exoskeleton"
	"github.com/fyrsmithlabs/dodctl/internal/logging"
	"github.com/fyrsmithlabs/dodctl/internal/report"
	"github.com/fyrsmithlabs/dodctl/internal/scoring"
	"github.com/fyrsmithlabs/dodctl/internal/telemetry"
)

// CreateExoskeleton scaffolds automation artifacts into the project.
func (o *Orchestrator) CreateExoskeleton(ctx context.Context, projectRoot string, opts exoskeleton.Options) (*exoskeleton.Result, error) {
	act := o.newAction(ActionCreateExoskeleton, projectRoot, exoParams(opts))
	ctx = logging.WithRunID(ctx, act.ID)

	if !opts.DryRun {
		unlock := o.locks.Lock(projectRoot)
		defer unlock()
	}

	result, err := o.generator.Generate(ctx, projectRoot, opts)
	if err != nil {
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return nil, err
	}
	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, exoCounters(result))
	return result, nil
}

// GeneratePipeline scaffolds only the pipeline artifacts of a template,
// without marking the project as fully scaffolded.
func (o *Orchestrator) GeneratePipeline(ctx context.Context, projectRoot string, opts exoskeleton.Options) (*exoskeleton.Result, error) {
	if opts.Template == "" {
		opts.Template = "standard"
	}
	opts.Filter = exoskeleton.PipelineFilter
	opts.NoManifest = true

	act := o.newAction(ActionGeneratePipeline, projectRoot, exoParams(opts))
	ctx = logging.WithRunID(ctx, act.ID)

	if !opts.DryRun {
		unlock := o.locks.Lock(projectRoot)
		defer unlock()
	}

	result, err := o.generator.Generate(ctx, projectRoot, opts)
	if err != nil {
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return nil, err
	}
	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, exoCounters(result))
	return result, nil
}

// AutomationOptions configure a complete automation run.
type AutomationOptions struct {
	Evaluate        EvaluateOptions
	Exoskeleton     exoskeleton.Options
	SkipExoskeleton bool
}

// AutomationResult is the outcome of one complete automation run.
type AutomationResult struct {
	RunID       string              `json:"run_id"`
	Phases      []Phase             `json:"phases"`
	Report      *scoring.Report     `json:"report,omitempty"`
	Exoskeleton *exoskeleton.Result `json:"exoskeleton,omitempty"`
}

// ExecuteCompleteAutomation drives the full state machine: validate,
// optional auto-fix, score, exoskeleton, report. On an unrecoverable error
// the run moves to the failed terminal state; the phases walked so far stay
// in the result for auditing.
func (o *Orchestrator) ExecuteCompleteAutomation(ctx context.Context, projectRoot string, opts AutomationOptions) (*AutomationResult, error) {
	act := o.newAction(ActionExecuteCompleteAutomation, projectRoot, automationParams(opts))
	ctx = logging.WithRunID(ctx, act.ID)

	unlock := o.locks.Lock(projectRoot)
	defer unlock()

	result := &AutomationResult{RunID: act.ID, Phases: []Phase{PhaseInit}}
	fail := func(err error) (*AutomationResult, error) {
		result.Phases = append(result.Phases, PhaseFailed)
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return result, err
	}

	crits, err := o.registry.Criteria(opts.Evaluate.Criteria)
	if err != nil {
		return fail(err)
	}
	if info, statErr := os.Stat(projectRoot); statErr != nil || !info.IsDir() {
		return fail(&pathError{projectRoot})
	}

	result.Phases = append(result.Phases, PhaseValidate)
	results := o.runValidators(ctx, projectRoot, crits, opts.Evaluate.Parallel)

	if opts.Evaluate.AutoFix {
		result.Phases = append(result.Phases, PhaseAutoFix)
		o.autoFix(ctx, projectRoot, results)
	}

	result.Phases = append(result.Phases, PhaseScore)
	result.Report = o.engine.Score(results, projectRoot, projectRef(projectRoot))

	if !opts.SkipExoskeleton {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		result.Phases = append(result.Phases, PhaseExoskeleton)
		exo, err := o.generator.Generate(ctx, projectRoot, opts.Exoskeleton)
		if err != nil {
			return fail(err)
		}
		result.Exoskeleton = exo
	}

	result.Phases = append(result.Phases, PhaseReport, PhaseDone)
	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, func(ev *telemetry.Event) {
		reportCounters(result.Report)(ev)
		if result.Exoskeleton != nil {
			exoCounters(result.Exoskeleton)(ev)
		}
	})
	return result, nil
}

// RunE2ETests is outside current capability: browser-driven end-to-end
// testing raises a not-implemented signal instead of placeholder data, and
// the attempt still records telemetry.
func (o *Orchestrator) RunE2ETests(ctx context.Context, projectRoot string) error {
	act := o.newAction(ActionRunE2ETests, projectRoot, nil)
	ctx = logging.WithRunID(ctx, act.ID)

	err := &NotImplementedError{Action: ActionRunE2ETests, Feature: "browser-driven end-to-end testing"}
	o.finish(ctx, act, telemetry.OutcomeNotImplemented, err, nil)
	return err
}

// AnalyzeOptions configure project analysis.
type AnalyzeOptions struct {
	// Insights requests AI-generated qualitative insights, which are not
	// implemented.
	Insights bool
}

// Analysis is the structural summary of a project.
type Analysis struct {
	ProjectPath string `json:"project_path"`
	Language    string `json:"language"`
	TestRunner  string `json:"test_runner,omitempty"`
	GitRepo     bool   `json:"git_repo"`
	GitRef      string `json:"git_ref,omitempty"`
	Scaffolded  bool   `json:"scaffolded"`
	Template    string `json:"template,omitempty"`
}

// AnalyzeProject summarizes the project's toolchain, repository state, and
// scaffolding. The AI-insight half of analysis is not implemented and is
// refused rather than faked.
func (o *Orchestrator) AnalyzeProject(ctx context.Context, projectRoot string, opts AnalyzeOptions) (*Analysis, error) {
	act := o.newAction(ActionAnalyzeProject, projectRoot, map[string]string{
		"insights": strconv.FormatBool(opts.Insights),
	})
	ctx = logging.WithRunID(ctx, act.ID)

	if opts.Insights {
		err := &NotImplementedError{Action: ActionAnalyzeProject, Feature: "AI-generated qualitative insights"}
		o.finish(ctx, act, telemetry.OutcomeNotImplemented, err, nil)
		return nil, err
	}

	if info, err := os.Stat(projectRoot); err != nil || !info.IsDir() {
		err := &pathError{projectRoot}
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return nil, err
	}

	analysis := &Analysis{ProjectPath: projectRoot}
	analysis.Language, analysis.TestRunner = detectToolchain(projectRoot)
	if ref := projectRef(projectRoot); ref != "" {
		analysis.GitRepo = true
		analysis.GitRef = ref
	}
	if manifest, err := exoskeleton.ReadManifest(projectRoot); err == nil {
		analysis.Scaffolded = true
		analysis.Template = manifest.Template
	}

	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, nil)
	return analysis, nil
}

// ReportOptions configure report generation.
type ReportOptions struct {
	Evaluate EvaluateOptions
	Format   report.Format
	Output   io.Writer
}

// GenerateReport evaluates the project and renders the report in the
// requested representation. Report construction is pure given the inputs;
// only the write to Output is a side effect.
func (o *Orchestrator) GenerateReport(ctx context.Context, projectRoot string, opts ReportOptions) (*scoring.Report, error) {
	act := o.newAction(ActionGenerateReport, projectRoot, evalParams(opts.Evaluate))
	ctx = logging.WithRunID(ctx, act.ID)

	if opts.Evaluate.AutoFix {
		unlock := o.locks.Lock(projectRoot)
		defer unlock()
	}

	rep, err := o.evaluate(ctx, projectRoot, opts.Evaluate)
	if err != nil {
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return nil, err
	}

	if opts.Output != nil {
		if err := report.Write(opts.Output, rep, opts.Format); err != nil {
			o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
			return nil, err
		}
	}

	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, reportCounters(rep))
	return rep, nil
}

func exoParams(opts exoskeleton.Options) map[string]string {
	return map[string]string{
		"template": opts.Template,
		"force":    strconv.FormatBool(opts.Force),
		"dry_run":  strconv.FormatBool(opts.DryRun),
	}
}

func automationParams(opts AutomationOptions) map[string]string {
	params := evalParams(opts.Evaluate)
	params["template"] = opts.Exoskeleton.Template
	params["skip_exoskeleton"] = strconv.FormatBool(opts.SkipExoskeleton)
	return params
}

// pathError reports a project root that is not a directory.
type pathError struct {
	path string
}

func (e *pathError) Error() string {
	return "project root " + e.path + " is not a directory"
}

// detectToolchain identifies the project language and its test runner from
// manifest files, mirroring the testing validator's detection order.
func detectToolchain(projectRoot string) (language, runner string) {
	exists := func(name string) bool {
		_, err := os.Stat(projectRoot + string(os.PathSeparator) + name)
		return err == nil
	}
	switch {
	case exists("go.mod"):
		return "go", "go test"
	case exists("pyproject.toml") || exists("setup.py"):
		return "python", "pytest"
	case exists("package.json"):
		return "node", "npm test"
	default:
		return "unknown", ""
	}
}
