package validators

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// PerformanceValidator scores the presence of performance testing artifacts:
// benchmarks, load-test scripts, and a declared performance budget. It runs
// no benchmarks itself so evaluation stays within the validator time bound.
type PerformanceValidator struct{}

// NewPerformanceValidator creates the performance criterion validator.
func NewPerformanceValidator() *PerformanceValidator {
	return &PerformanceValidator{}
}

// Criterion implements criteria.Validator.
func (v *PerformanceValidator) Criterion() criteria.Criterion { return criteria.Performance }

// Evaluate scores benchmark coverage and perf tooling presence.
func (v *PerformanceValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	benchFiles := 0
	loadScripts := 0

	err := walkSource(ctx, projectRoot, func(path string, info fs.FileInfo) error {
		base := filepath.Base(path)
		switch {
		case strings.HasSuffix(base, "_test.go") && info.Size() <= maxScanFileSize:
			content, err := os.ReadFile(path)
			if err == nil && strings.Contains(string(content), "func Benchmark") {
				benchFiles++
			}
		case strings.HasSuffix(base, ".bench.py"), strings.HasPrefix(base, "bench_"):
			benchFiles++
		case base == "locustfile.py", strings.HasSuffix(base, ".k6.js"):
			loadScripts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var score float64
	var issues []criteria.Issue

	if benchFiles > 0 {
		score += 50
	} else {
		issues = append(issues, issue(criteria.SeverityWarning, "no benchmark files found"))
	}
	if loadScripts > 0 || dirExists(filepath.Join(projectRoot, "benchmarks")) {
		score += 25
	}
	if fileExists(filepath.Join(projectRoot, ".dod", "perf.yaml")) {
		score += 25
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no performance budget declared (.dod/perf.yaml)"))
	}

	result := criteria.NewResult(criteria.Performance, statusFor(score, 50), score, issues...)
	result.Details = map[string]string{
		"benchmark_files": strconv.Itoa(benchFiles),
		"load_scripts":    strconv.Itoa(loadScripts),
	}
	return result, nil
}

var _ criteria.Validator = (*PerformanceValidator)(nil)
