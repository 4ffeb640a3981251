// Package scoring combines per-criterion results into an evaluation report
// with a single weighted score and a tier-gated verdict.
package scoring

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// DefaultPassThreshold is the weighted-score bar when the caller supplies
// none.
const DefaultPassThreshold = 80.0

// Report is the immutable outcome of one evaluation run.
type Report struct {
	// Results lists one entry per requested criterion, always in
	// declaration order regardless of evaluation completion order.
	Results []*criteria.Result `json:"per_criterion"`

	// WeightedScore is normalized over evaluated criteria only, so a
	// project is not penalized because a tool was unavailable.
	WeightedScore float64 `json:"weighted_score"`

	// TierScores holds the normalized weighted mean per tier, over that
	// tier's evaluated criteria.
	TierScores map[criteria.Tier]float64 `json:"tier_scores"`

	// Skipped lists criteria that were not evaluated, so callers can judge
	// confidence in the score.
	Skipped []criteria.Criterion `json:"skipped,omitempty"`

	OverallPass   bool      `json:"overall_pass"`
	GatingReason  string    `json:"gating_reason,omitempty"`
	PassThreshold float64   `json:"pass_threshold"`
	GeneratedAt   time.Time `json:"generated_at"`
	ProjectPath   string    `json:"project_path"`
	ProjectRef    string    `json:"project_ref,omitempty"`
}

// CriteriaPassed counts criteria with status pass.
func (r *Report) CriteriaPassed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == criteria.StatusPass {
			n++
		}
	}
	return n
}

// Engine computes reports from criterion results.
type Engine struct {
	passThreshold float64
}

// NewEngine creates a scoring engine. A non-positive threshold falls back to
// DefaultPassThreshold.
func NewEngine(passThreshold float64) *Engine {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	return &Engine{passThreshold: passThreshold}
}

// Score combines results into a report.
//
// Results are consumed keyed by criterion and re-emitted in declaration
// order, restricted to the criteria present in the input, so two runs over
// the same results produce identical reports regardless of how the results
// were collected.
func (e *Engine) Score(results map[criteria.Criterion]*criteria.Result, projectPath, projectRef string) *Report {
	report := &Report{
		TierScores:    make(map[criteria.Tier]float64),
		PassThreshold: e.passThreshold,
		GeneratedAt:   time.Now().UTC(),
		ProjectPath:   projectPath,
		ProjectRef:    projectRef,
	}

	var rawSum, weightSum float64
	tierRaw := make(map[criteria.Tier]float64)
	tierWeight := make(map[criteria.Tier]float64)

	for _, c := range criteria.All() {
		res, ok := results[c]
		if !ok {
			continue
		}
		report.Results = append(report.Results, res)

		if !res.Evaluated() {
			report.Skipped = append(report.Skipped, c)
			continue
		}

		score, ok := res.ScoreValue()
		if !ok {
			// Measured status without a score is a validator bug; treat as
			// not evaluated rather than fabricating a number.
			report.Skipped = append(report.Skipped, c)
			continue
		}

		w := criteria.Weight(c)
		rawSum += w * score
		weightSum += w

		tier := criteria.TierOf(c)
		tierRaw[tier] += w * score
		tierWeight[tier] += w
	}

	if weightSum > 0 {
		report.WeightedScore = rawSum / weightSum
	}
	for tier, w := range tierWeight {
		if w > 0 {
			report.TierScores[tier] = tierRaw[tier] / w
		}
	}

	report.OverallPass, report.GatingReason = e.gate(report)
	return report
}

// gate applies the tiered gating rule: every critical-tier criterion must
// have status pass, and the weighted score must clear the threshold. The
// gating reason names the first failing critical criterion in declaration
// order, so the verdict is deterministic.
func (e *Engine) gate(report *Report) (bool, string) {
	if len(report.Results) == 0 {
		return false, "no criteria evaluated"
	}

	for _, res := range report.Results {
		if criteria.TierOf(res.Criterion) != criteria.TierCritical {
			continue
		}
		if res.Status != criteria.StatusPass {
			return false, fmt.Sprintf("critical criterion %s has status %s", res.Criterion, res.Status)
		}
	}

	if report.WeightedScore < e.passThreshold {
		return false, fmt.Sprintf("weighted score %.1f below threshold %.1f", report.WeightedScore, e.passThreshold)
	}

	return true, ""
}
