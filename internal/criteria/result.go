package criteria

import (
	"context"
	"time"
)

// Status is the outcome of evaluating one criterion.
type Status string

const (
	// StatusPass means the criterion was measured and met.
	StatusPass Status = "pass"
	// StatusFail means the criterion was measured and not met.
	StatusFail Status = "fail"
	// StatusSkipped means the required external tool was unavailable.
	StatusSkipped Status = "skipped"
	// StatusUnknown means evaluation did not complete (timeout, cancellation,
	// validator error).
	StatusUnknown Status = "unknown"
)

// Severity grades an issue found during evaluation.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Issue is one finding attached to a criterion result.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Result is the outcome of one criterion evaluation.
//
// Score is nil whenever Status is skipped or unknown: an unmeasured value is
// never replaced with an estimate.
type Result struct {
	Criterion Criterion         `json:"criterion"`
	Status    Status            `json:"status"`
	Score     *float64          `json:"score,omitempty"`
	Issues    []Issue           `json:"issues,omitempty"`
	Fixed     bool              `json:"fixed,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Duration  time.Duration     `json:"duration_ns,omitempty"`
}

// Evaluated reports whether the criterion produced a measured score.
func (r *Result) Evaluated() bool {
	return r.Status == StatusPass || r.Status == StatusFail
}

// ScoreValue returns the measured score, or 0 and false when unmeasured.
func (r *Result) ScoreValue() (float64, bool) {
	if r.Score == nil {
		return 0, false
	}
	return *r.Score, true
}

// NewResult builds a measured result. Status is derived from the score
// against the per-criterion pass mark of 100-scale scoring: callers set
// status explicitly instead when pass/fail is not score-derived.
func NewResult(c Criterion, status Status, score float64, issues ...Issue) *Result {
	s := clampScore(score)
	return &Result{Criterion: c, Status: status, Score: &s, Issues: issues}
}

// NewSkipped builds a skipped result carrying the reason the external tool
// was unavailable. The score is absent.
func NewSkipped(c Criterion, reason string) *Result {
	return &Result{
		Criterion: c,
		Status:    StatusSkipped,
		Issues:    []Issue{{Severity: SeverityInfo, Message: reason}},
	}
}

// NewUnknown builds an unknown result for a validator that did not complete.
// The score is absent.
func NewUnknown(c Criterion, reason string) *Result {
	return &Result{
		Criterion: c,
		Status:    StatusUnknown,
		Issues:    []Issue{{Severity: SeverityWarning, Message: reason}},
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// FixResult reports the outcome of one auto-fix attempt.
type FixResult struct {
	Applied     bool   `json:"applied"`
	Description string `json:"description,omitempty"`
}

// Validator evaluates one criterion against a project root.
//
// Evaluate must be non-mutating, must honor ctx's deadline, and must absorb
// tool absence as a skipped result rather than an error. A returned error is
// treated by the orchestrator as status unknown for this criterion only.
type Validator interface {
	Criterion() Criterion
	Evaluate(ctx context.Context, projectRoot string) (*Result, error)
}

// AutoFixer is optionally implemented by validators that can remediate a
// failing criterion. Fix must be idempotent: a second call with nothing
// changed in between performs no further mutation and returns Applied=false.
type AutoFixer interface {
	Fix(ctx context.Context, projectRoot string) (*FixResult, error)
}
