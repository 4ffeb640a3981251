package telemetry

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Outcome classifies how an operation ended.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailure        Outcome = "failure"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeNotImplemented Outcome = "not_implemented"
)

// Event is one recorded operation. Every orchestrator-level operation emits
// exactly one Event on every exit path, including failures.
type Event struct {
	Operation   string
	ProjectPath string
	Params      map[string]string
	Duration    time.Duration
	Outcome     Outcome
	Err         error

	// Counters. WeightedScore is nil when no evaluation produced one.
	CriteriaPassed  int
	CriteriaSkipped int
	WeightedScore   *float64
	FilesCreated    int
	FilesSkipped    int
	DirsCreated     int
}

// ActionRecorder turns Events into spans and metrics. A nil recorder is a
// valid no-op; recording never returns an error to the caller.
type ActionRecorder struct {
	tracer   oteltrace.Tracer
	actions  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewActionRecorder creates a recorder bound to the given telemetry
// instance. Instrument creation failures leave the affected instrument nil,
// which Record tolerates.
func NewActionRecorder(t *Telemetry) *ActionRecorder {
	tracer := t.Tracer("dodctl/orchestrator")
	meter := t.Meter("dodctl/orchestrator")

	actions, err := meter.Int64Counter("dod.actions",
		metric.WithDescription("Automation actions by operation and outcome"))
	if err != nil {
		actions = nil
	}
	duration, err := meter.Float64Histogram("dod.action.duration",
		metric.WithDescription("Automation action duration"),
		metric.WithUnit("ms"))
	if err != nil {
		duration = nil
	}

	return &ActionRecorder{
		tracer:   tracer,
		actions:  actions,
		duration: duration,
	}
}

// Record emits one span and the action metrics for the event. The span
// covers the event's duration, ending at the time of the call.
func (r *ActionRecorder) Record(ctx context.Context, ev Event) {
	if r == nil {
		return
	}

	end := time.Now()
	start := end.Add(-ev.Duration)

	_, span := r.tracer.Start(ctx, "dod."+ev.Operation,
		oteltrace.WithTimestamp(start),
		oteltrace.WithAttributes(ev.attributes()...),
	)
	if ev.Outcome == OutcomeFailure {
		msg := ""
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		span.SetStatus(codes.Error, msg)
	}
	span.End(oteltrace.WithTimestamp(end))

	ms := float64(ev.Duration) / float64(time.Millisecond)
	attrs := metric.WithAttributes(
		attribute.String("operation", ev.Operation),
		attribute.String("outcome", string(ev.Outcome)),
	)
	if r.actions != nil {
		r.actions.Add(ctx, 1, attrs)
	}
	if r.duration != nil {
		r.duration.Record(ctx, ms, attrs)
	}
}

// attributes materializes the fixed attribute contract for a span.
func (ev Event) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("dod.operation", ev.Operation),
		attribute.String("dod.project_path", ev.ProjectPath),
		attribute.String("dod.outcome", string(ev.Outcome)),
		attribute.Float64("dod.duration_ms", float64(ev.Duration)/float64(time.Millisecond)),
		attribute.Int("dod.criteria_passed", ev.CriteriaPassed),
		attribute.Int("dod.criteria_skipped", ev.CriteriaSkipped),
		attribute.Int("dod.files_created", ev.FilesCreated),
		attribute.Int("dod.files_skipped", ev.FilesSkipped),
		attribute.Int("dod.dirs_created", ev.DirsCreated),
	}
	if ev.WeightedScore != nil {
		attrs = append(attrs, attribute.Float64("dod.weighted_score", *ev.WeightedScore))
	}
	if ev.Err != nil {
		attrs = append(attrs, attribute.String("dod.error", ev.Err.Error()))
	}

	keys := make([]string, 0, len(ev.Params))
	for k := range ev.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String("dod.param."+k, ev.Params[k]))
	}
	return attrs
}
