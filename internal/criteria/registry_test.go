package criteria

import (
	"context"
	"errors"
	"testing"
)

// stubValidator satisfies Validator for registry construction tests.
type stubValidator struct {
	criterion Criterion
}

func (s *stubValidator) Criterion() Criterion { return s.criterion }

func (s *stubValidator) Evaluate(ctx context.Context, projectRoot string) (*Result, error) {
	return NewResult(s.criterion, StatusPass, 100), nil
}

func fullValidatorSet() map[Criterion]Validator {
	set := make(map[Criterion]Validator)
	for _, c := range All() {
		set[c] = &stubValidator{criterion: c}
	}
	return set
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(fullValidatorSet())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	for _, c := range All() {
		if _, ok := reg.Validator(c); !ok {
			t.Errorf("registry missing validator for %s", c)
		}
	}
}

func TestNewRegistryMissingValidator(t *testing.T) {
	set := fullValidatorSet()
	delete(set, Compliance)

	_, err := NewRegistry(set)
	if !errors.Is(err, ErrMissingValidator) {
		t.Errorf("NewRegistry() error = %v, want ErrMissingValidator", err)
	}
}

func TestNewRegistryUnknownCriterion(t *testing.T) {
	set := fullValidatorSet()
	set[Criterion("astrology")] = &stubValidator{criterion: "astrology"}

	_, err := NewRegistry(set)
	if !errors.Is(err, ErrUnknownCriterion) {
		t.Errorf("NewRegistry() error = %v, want ErrUnknownCriterion", err)
	}
}

func TestRegistryCriteriaFilter(t *testing.T) {
	reg, err := NewRegistry(fullValidatorSet())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	t.Run("no filter returns all in order", func(t *testing.T) {
		got, err := reg.Criteria(nil)
		if err != nil {
			t.Fatalf("Criteria() error = %v", err)
		}
		if len(got) != len(All()) {
			t.Errorf("got %d criteria, want %d", len(got), len(All()))
		}
	})

	t.Run("filter preserves declaration order", func(t *testing.T) {
		// Request out of declared order; result must come back ordered.
		got, err := reg.Criteria([]Criterion{DevOps, Security})
		if err != nil {
			t.Fatalf("Criteria() error = %v", err)
		}
		if len(got) != 2 || got[0] != Security || got[1] != DevOps {
			t.Errorf("Criteria() = %v, want [security devops]", got)
		}
	})

	t.Run("unknown name rejected", func(t *testing.T) {
		if _, err := reg.Criteria([]Criterion{"nonsense"}); err == nil {
			t.Error("filter with unknown criterion should fail")
		}
	})
}
