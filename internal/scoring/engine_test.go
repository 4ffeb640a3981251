package scoring

import (
	"math"
	"testing"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

func allAt(status criteria.Status, score float64) map[criteria.Criterion]*criteria.Result {
	results := make(map[criteria.Criterion]*criteria.Result)
	for _, c := range criteria.All() {
		results[c] = criteria.NewResult(c, status, score)
	}
	return results
}

func TestScoreAllPassing(t *testing.T) {
	// Scenario: all seven criteria pass at 90.
	engine := NewEngine(80)
	report := engine.Score(allAt(criteria.StatusPass, 90), "/tmp/p", "")

	if math.Abs(report.WeightedScore-90) > 1e-9 {
		t.Errorf("weighted score = %v, want 90", report.WeightedScore)
	}
	if !report.OverallPass {
		t.Errorf("overall pass = false, want true (reason: %s)", report.GatingReason)
	}
	if report.GatingReason != "" {
		t.Errorf("gating reason = %q, want empty", report.GatingReason)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("skipped = %v, want none", report.Skipped)
	}
}

func TestScoreCriticalFailureGates(t *testing.T) {
	// Scenario: security fails at 40 while everything else is 100. The
	// weighted score stays high but the critical-tier gate forces failure.
	results := allAt(criteria.StatusPass, 100)
	results[criteria.Security] = criteria.NewResult(criteria.Security, criteria.StatusFail, 40)

	engine := NewEngine(80)
	report := engine.Score(results, "/tmp/p", "")

	want := 0.25*100 + 0.25*40 + 0.20*100 + 0.10*100 + 0.10*100 + 0.05*100 + 0.05*100
	if math.Abs(report.WeightedScore-want) > 1e-9 {
		t.Errorf("weighted score = %v, want %v", report.WeightedScore, want)
	}
	if report.WeightedScore < 80 {
		t.Errorf("weighted score %v unexpectedly below threshold", report.WeightedScore)
	}
	if report.OverallPass {
		t.Error("overall pass = true despite critical failure")
	}
	if report.GatingReason != "critical criterion security has status fail" {
		t.Errorf("gating reason = %q", report.GatingReason)
	}
}

func TestScoreSkippedRenormalizes(t *testing.T) {
	// Scenario: compliance tool absent. Score is computed over the
	// remaining six criteria and compliance is listed as not evaluated.
	results := allAt(criteria.StatusPass, 90)
	results[criteria.Compliance] = criteria.NewSkipped(criteria.Compliance, "policy scanner not installed")

	engine := NewEngine(80)
	report := engine.Score(results, "/tmp/p", "")

	// All evaluated criteria scored 90, so renormalization keeps 90.
	if math.Abs(report.WeightedScore-90) > 1e-9 {
		t.Errorf("weighted score = %v, want 90", report.WeightedScore)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != criteria.Compliance {
		t.Errorf("skipped = %v, want [compliance]", report.Skipped)
	}
	if !report.OverallPass {
		t.Errorf("overall pass = false, reason %q", report.GatingReason)
	}

	// Renormalization must matter when scores differ: drop a high scorer
	// and the remaining mean shifts instead of being dragged to zero.
	results = allAt(criteria.StatusPass, 100)
	results[criteria.Testing] = criteria.NewSkipped(criteria.Testing, "no test runner")
	report = engine.Score(results, "/tmp/p", "")
	if math.Abs(report.WeightedScore-100) > 1e-9 {
		t.Errorf("weighted score = %v, want 100 after renormalization", report.WeightedScore)
	}
}

func TestScoreCriticalSkippedGates(t *testing.T) {
	// A critical criterion that was not measured cannot count as passed.
	results := allAt(criteria.StatusPass, 95)
	results[criteria.Testing] = criteria.NewUnknown(criteria.Testing, "validator timed out")

	report := NewEngine(80).Score(results, "/tmp/p", "")
	if report.OverallPass {
		t.Error("overall pass = true with unknown critical criterion")
	}
	if report.GatingReason != "critical criterion testing has status unknown" {
		t.Errorf("gating reason = %q", report.GatingReason)
	}
}

func TestScoreBelowThreshold(t *testing.T) {
	report := NewEngine(80).Score(allAt(criteria.StatusPass, 70), "/tmp/p", "")
	if report.OverallPass {
		t.Error("overall pass = true below threshold")
	}
	if report.GatingReason != "weighted score 70.0 below threshold 80.0" {
		t.Errorf("gating reason = %q", report.GatingReason)
	}
}

func TestScoreBounds(t *testing.T) {
	for _, score := range []float64{0, 50, 100} {
		report := NewEngine(80).Score(allAt(criteria.StatusPass, score), "/tmp/p", "")
		if report.WeightedScore < 0 || report.WeightedScore > 100 {
			t.Errorf("weighted score %v out of [0,100]", report.WeightedScore)
		}
	}
}

func TestScoreDeclarationOrder(t *testing.T) {
	report := NewEngine(80).Score(allAt(criteria.StatusPass, 90), "/tmp/p", "")
	for i, c := range criteria.All() {
		if report.Results[i].Criterion != c {
			t.Errorf("Results[%d] = %s, want %s", i, report.Results[i].Criterion, c)
		}
	}
}

func TestScoreTierScores(t *testing.T) {
	results := allAt(criteria.StatusPass, 100)
	results[criteria.Compliance] = criteria.NewResult(criteria.Compliance, criteria.StatusFail, 0)
	results[criteria.DevOps] = criteria.NewResult(criteria.DevOps, criteria.StatusFail, 0)

	report := NewEngine(80).Score(results, "/tmp/p", "")
	if got := report.TierScores[criteria.TierCritical]; math.Abs(got-100) > 1e-9 {
		t.Errorf("critical tier score = %v, want 100", got)
	}
	if got := report.TierScores[criteria.TierOptional]; math.Abs(got) > 1e-9 {
		t.Errorf("optional tier score = %v, want 0", got)
	}
}

func TestScoreNothingEvaluated(t *testing.T) {
	results := map[criteria.Criterion]*criteria.Result{
		criteria.Testing: criteria.NewSkipped(criteria.Testing, "no runner"),
	}
	report := NewEngine(80).Score(results, "/tmp/p", "")
	if report.OverallPass {
		t.Error("overall pass with nothing evaluated")
	}
	if report.WeightedScore != 0 {
		t.Errorf("weighted score = %v, want 0", report.WeightedScore)
	}
}

func TestNewEngineDefaultThreshold(t *testing.T) {
	report := NewEngine(0).Score(allAt(criteria.StatusPass, 85), "/tmp/p", "")
	if report.PassThreshold != DefaultPassThreshold {
		t.Errorf("threshold = %v, want %v", report.PassThreshold, DefaultPassThreshold)
	}
	if !report.OverallPass {
		t.Error("85 should clear the default threshold")
	}
}
