// Package criteria defines the Definition-of-Done criterion table and the
// result contract every validator produces.
//
// The criterion set is closed and versioned: weights and tiers are a
// compile-time table, not runtime configuration. New criteria require a code
// change, a registry entry, and re-validation of the weight-sum invariant.
package criteria

import "fmt"

// Criterion identifies one readiness dimension.
type Criterion string

const (
	Testing       Criterion = "testing"
	Security      Criterion = "security"
	CodeQuality   Criterion = "code_quality"
	Documentation Criterion = "documentation"
	Performance   Criterion = "performance"
	Compliance    Criterion = "compliance"
	DevOps        Criterion = "devops"
)

// Tier groups criteria for gating. Any critical-tier failure forces overall
// failure regardless of the weighted score.
type Tier string

const (
	TierCritical  Tier = "critical"
	TierImportant Tier = "important"
	TierOptional  Tier = "optional"
)

// Definition carries the fixed weight and tier for one criterion.
type Definition struct {
	Criterion Criterion
	Weight    float64
	Tier      Tier
}

// WeightTolerance is the permitted floating-point slack on the weight-sum
// invariant.
const WeightTolerance = 1e-6

// definitions is the authoritative per-criterion table. The per-criterion
// weights are ground truth; tier totals derive from them (70/20/10) and are
// never rescaled.
var definitions = []Definition{
	{Testing, 0.25, TierCritical},
	{Security, 0.25, TierCritical},
	{CodeQuality, 0.20, TierCritical},
	{Documentation, 0.10, TierImportant},
	{Performance, 0.10, TierImportant},
	{Compliance, 0.05, TierOptional},
	{DevOps, 0.05, TierOptional},
}

// All returns every criterion in declaration order. Reports always render in
// this order regardless of evaluation completion order.
func All() []Criterion {
	out := make([]Criterion, len(definitions))
	for i, d := range definitions {
		out[i] = d.Criterion
	}
	return out
}

// Definitions returns the full table in declaration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for a criterion.
func Lookup(c Criterion) (Definition, error) {
	for _, d := range definitions {
		if d.Criterion == c {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("unknown criterion: %s", c)
}

// Weight returns the fixed weight for a criterion, or 0 if unknown.
func Weight(c Criterion) float64 {
	d, err := Lookup(c)
	if err != nil {
		return 0
	}
	return d.Weight
}

// TierOf returns the tier for a criterion, or empty if unknown.
func TierOf(c Criterion) Tier {
	d, err := Lookup(c)
	if err != nil {
		return ""
	}
	return d.Tier
}

// Valid reports whether c names a registered criterion.
func Valid(c Criterion) bool {
	_, err := Lookup(c)
	return err == nil
}
