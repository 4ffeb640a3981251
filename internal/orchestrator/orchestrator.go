package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/dodctl/internal/config"
	"github.com/fyrsmithlabs/dodctl/internal/criteria"
	"github.com/fyrsmithlabs/dodctl/internal/exoskeleton"
	"github.com/fyrsmithlabs/dodctl/internal/logging"
	"github.com/fyrsmithlabs/dodctl/internal/scoring"
	"github.com/fyrsmithlabs/dodctl/internal/telemetry"
)

// Orchestrator coordinates validators, scoring, scaffolding, and telemetry
// for one project at a time. It keeps no cross-invocation state beyond the
// static validator table and the per-path mutation locks.
type Orchestrator struct {
	registry   *criteria.Registry
	engine     *scoring.Engine
	generator  *exoskeleton.Generator
	recorder   *telemetry.ActionRecorder
	logger     *logging.Logger
	evaluation config.EvaluationConfig
	locks      *pathLocks
}

// Options configure an Orchestrator. Registry is required; everything else
// has a usable default.
type Options struct {
	Registry   *criteria.Registry
	Engine     *scoring.Engine
	Generator  *exoskeleton.Generator
	Recorder   *telemetry.ActionRecorder
	Logger     *logging.Logger
	Evaluation config.EvaluationConfig
}

// New creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registry == nil {
		return nil, errors.New("orchestrator: registry is required")
	}
	if opts.Engine == nil {
		opts.Engine = scoring.NewEngine(opts.Evaluation.PassThreshold)
	}
	if opts.Generator == nil {
		opts.Generator = exoskeleton.NewGenerator()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Evaluation.MaxWorkers < 1 {
		opts.Evaluation.MaxWorkers = len(criteria.All())
	}
	if opts.Evaluation.ValidatorTimeout <= 0 {
		opts.Evaluation.ValidatorTimeout = 30 * time.Second
	}

	return &Orchestrator{
		registry:   opts.Registry,
		engine:     opts.Engine,
		generator:  opts.Generator,
		recorder:   opts.Recorder,
		logger:     opts.Logger.Named("orchestrator"),
		evaluation: opts.Evaluation,
		locks:      newPathLocks(),
	}, nil
}

// EvaluateOptions configure one validation run.
type EvaluateOptions struct {
	// Criteria restricts evaluation to the named subset. Empty means all.
	Criteria []criteria.Criterion
	Parallel bool
	AutoFix  bool
}

// ValidateCriteria runs validators against the project and scores the
// results.
func (o *Orchestrator) ValidateCriteria(ctx context.Context, projectRoot string, opts EvaluateOptions) (*scoring.Report, error) {
	act := o.newAction(ActionValidateCriteria, projectRoot, evalParams(opts))
	ctx = logging.WithRunID(ctx, act.ID)

	if opts.AutoFix {
		unlock := o.locks.Lock(projectRoot)
		defer unlock()
	}

	report, err := o.evaluate(ctx, projectRoot, opts)
	if err != nil {
		o.finish(ctx, act, telemetry.OutcomeFailure, err, nil)
		return nil, err
	}
	o.finish(ctx, act, telemetry.OutcomeSuccess, nil, reportCounters(report))
	return report, nil
}

// evaluate is the validation core shared by every evaluating operation. The
// caller owns locking; evaluate itself never mutates the project except
// through auto-fixers.
func (o *Orchestrator) evaluate(ctx context.Context, projectRoot string, opts EvaluateOptions) (*scoring.Report, error) {
	crits, err := o.registry.Criteria(opts.Criteria)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(projectRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", projectRoot)
	}

	results := o.runValidators(ctx, projectRoot, crits, opts.Parallel)
	if opts.AutoFix {
		o.autoFix(ctx, projectRoot, results)
	}
	return o.engine.Score(results, projectRoot, projectRef(projectRoot)), nil
}

// runValidators collects one result per requested criterion, slot-assigned
// by index so aggregation is independent of completion order. The stage
// never returns a partial result set.
func (o *Orchestrator) runValidators(ctx context.Context, projectRoot string, crits []criteria.Criterion, parallel bool) map[criteria.Criterion]*criteria.Result {
	slots := make([]*criteria.Result, len(crits))

	if parallel {
		sem := make(chan struct{}, o.evaluation.MaxWorkers)
		var wg sync.WaitGroup
		for i, c := range crits {
			wg.Add(1)
			go func(i int, c criteria.Criterion) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				slots[i] = o.runOne(ctx, projectRoot, c)
			}(i, c)
		}
		wg.Wait()
	} else {
		for i, c := range crits {
			slots[i] = o.runOne(ctx, projectRoot, c)
		}
	}

	results := make(map[criteria.Criterion]*criteria.Result, len(crits))
	for i, c := range crits {
		results[c] = slots[i]
	}
	return results
}

// runOne evaluates a single criterion under the per-validator timeout.
// Validator errors, timeouts, and cancellation all collapse to status
// unknown for this criterion only.
func (o *Orchestrator) runOne(ctx context.Context, projectRoot string, c criteria.Criterion) *criteria.Result {
	if ctx.Err() != nil {
		return criteria.NewUnknown(c, "evaluation cancelled before start")
	}

	validator, ok := o.registry.Validator(c)
	if !ok {
		return criteria.NewUnknown(c, "no validator registered")
	}

	vctx, cancel := context.WithTimeout(ctx, o.evaluation.ValidatorTimeout)
	defer cancel()

	start := time.Now()
	res, err := validator.Evaluate(vctx, projectRoot)
	elapsed := time.Since(start)

	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		res = criteria.NewUnknown(c, fmt.Sprintf("validator timed out after %s", o.evaluation.ValidatorTimeout))
	case err != nil && errors.Is(err, context.Canceled):
		res = criteria.NewUnknown(c, "evaluation cancelled")
	case err != nil:
		o.logger.Warn(ctx, "validator failed", zap.String("criterion", string(c)), zap.Error(err))
		res = criteria.NewUnknown(c, fmt.Sprintf("validator error: %v", err))
	case res == nil:
		res = criteria.NewUnknown(c, "validator returned no result")
	}
	res.Duration = elapsed
	return res
}

// autoFix invokes each failing criterion's fixer once and re-evaluates that
// criterion once. Never a loop, never a synthetic pass: the fresh result
// stands whatever it says.
func (o *Orchestrator) autoFix(ctx context.Context, projectRoot string, results map[criteria.Criterion]*criteria.Result) {
	for _, c := range criteria.All() {
		res, ok := results[c]
		if !ok || res.Status != criteria.StatusFail {
			continue
		}
		validator, ok := o.registry.Validator(c)
		if !ok {
			continue
		}
		fixer, ok := validator.(criteria.AutoFixer)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		fix, err := fixer.Fix(ctx, projectRoot)
		if err != nil {
			o.logger.Warn(ctx, "auto-fix failed", zap.String("criterion", string(c)), zap.Error(err))
			continue
		}
		if fix == nil || !fix.Applied {
			continue
		}

		o.logger.Info(ctx, "auto-fix applied",
			zap.String("criterion", string(c)),
			zap.String("description", fix.Description))
		fresh := o.runOne(ctx, projectRoot, c)
		fresh.Fixed = true
		results[c] = fresh
	}
}

// newAction starts an AutomationAction record.
func (o *Orchestrator) newAction(action Action, projectPath string, params map[string]string) *AutomationAction {
	return &AutomationAction{
		ID:          uuid.NewString(),
		Action:      action,
		ProjectPath: projectPath,
		Params:      params,
		StartedAt:   time.Now().UTC(),
	}
}

// finish closes the action record and emits its telemetry event. Called on
// every exit path of every operation.
func (o *Orchestrator) finish(ctx context.Context, act *AutomationAction, outcome telemetry.Outcome, err error, decorate func(*telemetry.Event)) {
	act.CompletedAt = time.Now().UTC()
	act.Outcome = outcome
	if err != nil {
		act.Error = err.Error()
	}

	ev := telemetry.Event{
		Operation:   string(act.Action),
		ProjectPath: act.ProjectPath,
		Params:      act.Params,
		Duration:    act.CompletedAt.Sub(act.StartedAt),
		Outcome:     outcome,
		Err:         err,
	}
	if decorate != nil {
		decorate(&ev)
	}
	o.recorder.Record(ctx, ev)

	o.logger.Debug(ctx, "action recorded",
		zap.String("action", string(act.Action)),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", ev.Duration))
}

// reportCounters decorates an event with evaluation counters.
func reportCounters(report *scoring.Report) func(*telemetry.Event) {
	return func(ev *telemetry.Event) {
		ev.CriteriaPassed = report.CriteriaPassed()
		ev.CriteriaSkipped = len(report.Skipped)
		score := report.WeightedScore
		ev.WeightedScore = &score
	}
}

// exoCounters decorates an event with generation counters.
func exoCounters(res *exoskeleton.Result) func(*telemetry.Event) {
	return func(ev *telemetry.Event) {
		ev.FilesCreated = res.FilesCreated
		ev.FilesSkipped = res.FilesSkipped
		ev.DirsCreated = res.DirectoriesCreated
	}
}

func evalParams(opts EvaluateOptions) map[string]string {
	params := map[string]string{
		"parallel": strconv.FormatBool(opts.Parallel),
		"auto_fix": strconv.FormatBool(opts.AutoFix),
	}
	if len(opts.Criteria) > 0 {
		names := make([]string, len(opts.Criteria))
		for i, c := range opts.Criteria {
			names[i] = string(c)
		}
		params["criteria"] = strings.Join(names, ",")
	}
	return params
}

// projectRef resolves the project's git HEAD hash, or "" outside a
// repository.
func projectRef(projectRoot string) string {
	repo, err := git.PlainOpen(projectRoot)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
