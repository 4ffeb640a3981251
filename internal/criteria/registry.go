package criteria

import (
	"errors"
	"fmt"
	"math"
)

// Errors raised at registry construction. These surface before any project
// is touched.
var (
	ErrMissingValidator = errors.New("criterion has no registered validator")
	ErrUnknownCriterion = errors.New("validator registered for unknown criterion")
	ErrWeightInvariant  = errors.New("criterion weights do not sum to 1.0")
)

// Registry is the closed validator table, built once at engine
// initialization. There is no runtime registration API.
type Registry struct {
	validators map[Criterion]Validator
}

// NewRegistry validates the criterion table against the supplied validators
// and fails fast on any configuration invariant violation: a criterion with
// no validator, a validator for an unknown criterion, or weights not summing
// to 1.0 within WeightTolerance.
func NewRegistry(validators map[Criterion]Validator) (*Registry, error) {
	var sum float64
	for _, d := range definitions {
		sum += d.Weight
		if _, ok := validators[d.Criterion]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingValidator, d.Criterion)
		}
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return nil, fmt.Errorf("%w: got %.6f", ErrWeightInvariant, sum)
	}

	for c := range validators {
		if !Valid(c) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCriterion, c)
		}
	}

	table := make(map[Criterion]Validator, len(validators))
	for c, v := range validators {
		table[c] = v
	}
	return &Registry{validators: table}, nil
}

// Validator returns the validator for a criterion.
func (r *Registry) Validator(c Criterion) (Validator, bool) {
	v, ok := r.validators[c]
	return v, ok
}

// Criteria returns the registered criteria in declaration order, optionally
// filtered to the given subset. Unknown names in the filter are rejected.
func (r *Registry) Criteria(filter []Criterion) ([]Criterion, error) {
	if len(filter) == 0 {
		return All(), nil
	}
	requested := make(map[Criterion]bool, len(filter))
	for _, c := range filter {
		if !Valid(c) {
			return nil, fmt.Errorf("unknown criterion in filter: %s", c)
		}
		requested[c] = true
	}
	var out []Criterion
	for _, c := range All() {
		if requested[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
