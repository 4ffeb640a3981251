package criteria

import (
	"math"
	"testing"
)

func TestWeightSum(t *testing.T) {
	var sum float64
	for _, d := range Definitions() {
		if d.Weight <= 0 || d.Weight > 1 {
			t.Errorf("weight for %s out of (0,1]: %v", d.Criterion, d.Weight)
		}
		sum += d.Weight
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

func TestDeclarationOrder(t *testing.T) {
	want := []Criterion{Testing, Security, CodeQuality, Documentation, Performance, Compliance, DevOps}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("All() returned %d criteria, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTierAssignments(t *testing.T) {
	tests := []struct {
		criterion Criterion
		tier      Tier
		weight    float64
	}{
		{Testing, TierCritical, 0.25},
		{Security, TierCritical, 0.25},
		{CodeQuality, TierCritical, 0.20},
		{Documentation, TierImportant, 0.10},
		{Performance, TierImportant, 0.10},
		{Compliance, TierOptional, 0.05},
		{DevOps, TierOptional, 0.05},
	}

	for _, tt := range tests {
		t.Run(string(tt.criterion), func(t *testing.T) {
			if got := TierOf(tt.criterion); got != tt.tier {
				t.Errorf("TierOf(%s) = %s, want %s", tt.criterion, got, tt.tier)
			}
			if got := Weight(tt.criterion); got != tt.weight {
				t.Errorf("Weight(%s) = %v, want %v", tt.criterion, got, tt.weight)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup(Criterion("browser_e2e")); err == nil {
		t.Error("Lookup of unknown criterion should fail")
	}
	if Valid(Criterion("browser_e2e")) {
		t.Error("Valid should reject unknown criterion")
	}
	if Weight(Criterion("browser_e2e")) != 0 {
		t.Error("Weight of unknown criterion should be 0")
	}
}

func TestResultScoreAbsence(t *testing.T) {
	skipped := NewSkipped(Security, "scanner not installed")
	if skipped.Score != nil {
		t.Error("skipped result must not carry a score")
	}
	if skipped.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", skipped.Status)
	}
	if len(skipped.Issues) != 1 {
		t.Fatalf("skipped result should carry an explanatory issue")
	}

	unknown := NewUnknown(Testing, "validator timed out")
	if unknown.Score != nil {
		t.Error("unknown result must not carry a score")
	}
	if _, ok := unknown.ScoreValue(); ok {
		t.Error("ScoreValue should report absent score")
	}
	if unknown.Evaluated() {
		t.Error("unknown result must not count as evaluated")
	}
}

func TestResultScoreClamping(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"in range", 85, 85},
		{"below zero", -5, 0},
		{"above hundred", 120, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult(Testing, StatusPass, tt.score)
			got, ok := r.ScoreValue()
			if !ok {
				t.Fatal("measured result should carry a score")
			}
			if got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}
