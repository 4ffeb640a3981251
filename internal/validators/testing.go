package validators

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// testRunner describes the detected test tooling for a project.
type testRunner struct {
	tool string   // binary to look up and invoke
	args []string // invocation arguments
	kind string   // go | pytest | npm
}

// TestingValidator runs the project's own test suite and scores the outcome.
type TestingValidator struct {
	lookPath lookPathFunc
	run      runFunc
}

// NewTestingValidator creates the testing criterion validator.
func NewTestingValidator() *TestingValidator {
	return &TestingValidator{lookPath: exec.LookPath, run: defaultRun}
}

// Criterion implements criteria.Validator.
func (v *TestingValidator) Criterion() criteria.Criterion { return criteria.Testing }

// Evaluate detects the project's test runner from its manifest, executes it,
// and scores pass/fail counts. A missing runner binary yields skipped.
func (v *TestingValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	runner := detectRunner(projectRoot)
	if runner == nil {
		return criteria.NewSkipped(criteria.Testing,
			"no recognized test runner (looked for go.mod, pyproject.toml, package.json)"), nil
	}

	testFiles := v.countTestFiles(ctx, projectRoot, runner.kind)
	if testFiles == 0 {
		return criteria.NewResult(criteria.Testing, criteria.StatusFail, 10,
			issue(criteria.SeverityError, "no test files found")), nil
	}

	if _, err := v.lookPath(runner.tool); err != nil {
		return criteria.NewSkipped(criteria.Testing,
			fmt.Sprintf("test runner %q not installed", runner.tool)), nil
	}

	out, exitCode, err := v.run(ctx, projectRoot, runner.tool, runner.args...)
	// Never interpret the exit code of a run the deadline killed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return criteria.NewUnknown(criteria.Testing,
			fmt.Sprintf("test runner did not complete: %v", ctxErr)), nil
	}
	if err != nil {
		return criteria.NewUnknown(criteria.Testing,
			fmt.Sprintf("test runner did not complete: %v", err)), nil
	}

	result := &criteria.Result{Criterion: criteria.Testing, Details: map[string]string{
		"runner":     runner.kind,
		"test_files": strconv.Itoa(testFiles),
	}}

	if exitCode == 0 {
		score := 100.0
		result.Status = criteria.StatusPass
		result.Score = &score
		return result, nil
	}

	failures := countFailures(out, runner.kind)
	score := 100 - 20*float64(failures)
	if failures == 0 {
		// Non-zero exit without parsed failures still means the suite broke.
		score = 40
	}
	if score < 0 {
		score = 0
	}
	result.Status = criteria.StatusFail
	result.Score = &score
	result.Issues = append(result.Issues, issue(criteria.SeverityError,
		fmt.Sprintf("test suite failed (exit %d, %d failures detected)", exitCode, failures)))
	return result, nil
}

// Fix seeds a starter test scaffold for projects with no tests. A second
// invocation finds the scaffold present and applies nothing.
func (v *TestingValidator) Fix(ctx context.Context, projectRoot string) (*criteria.FixResult, error) {
	runner := detectRunner(projectRoot)
	if runner == nil {
		return &criteria.FixResult{Applied: false, Description: "no recognized project manifest"}, nil
	}
	if v.countTestFiles(ctx, projectRoot, runner.kind) > 0 {
		return &criteria.FixResult{Applied: false, Description: "test files already present"}, nil
	}

	dir := filepath.Join(projectRoot, "tests")
	scaffold := filepath.Join(dir, "README.md")
	if fileExists(scaffold) {
		return &criteria.FixResult{Applied: false, Description: "test scaffold already present"}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating test scaffold directory: %w", err)
	}
	content := "# Tests\n\nStarter test scaffold. Add " + runner.kind + " tests here.\n"
	if err := os.WriteFile(scaffold, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("writing test scaffold: %w", err)
	}
	return &criteria.FixResult{Applied: true, Description: "seeded tests/README.md scaffold"}, nil
}

// detectRunner inspects project manifests in priority order.
func detectRunner(root string) *testRunner {
	if fileExists(filepath.Join(root, "go.mod")) {
		return &testRunner{tool: "go", args: []string{"test", "./..."}, kind: "go"}
	}
	if py := filepath.Join(root, "pyproject.toml"); fileExists(py) {
		// A parseable pyproject marks a Python project even without a
		// [tool.pytest] section.
		var manifest map[string]interface{}
		if _, err := toml.DecodeFile(py, &manifest); err == nil {
			return &testRunner{tool: "pytest", args: []string{"-q"}, kind: "pytest"}
		}
	}
	if fileExists(filepath.Join(root, "package.json")) {
		return &testRunner{tool: "npm", args: []string{"test", "--silent"}, kind: "npm"}
	}
	return nil
}

func (v *TestingValidator) countTestFiles(ctx context.Context, root, kind string) int {
	switch kind {
	case "go":
		return countSuffix(ctx, root, "_test.go")
	case "pytest":
		n := countSuffix(ctx, root, "_test.py")
		return n + countPrefix(ctx, root, "test_", ".py")
	default:
		return countSuffix(ctx, root, ".test.js", ".spec.js", ".test.ts", ".spec.ts")
	}
}

// countPrefix counts files whose base name starts with prefix and ends with
// suffix.
func countPrefix(ctx context.Context, root, prefix, suffix string) int {
	n := 0
	_ = walkSource(ctx, root, func(path string, info os.FileInfo) error {
		base := filepath.Base(path)
		if strings.HasPrefix(base, prefix) && strings.HasSuffix(base, suffix) {
			n++
		}
		return nil
	})
	return n
}

// countFailures extracts a failure count from runner output.
func countFailures(out, kind string) int {
	switch kind {
	case "go":
		return strings.Count(out, "--- FAIL")
	case "pytest":
		// "3 failed, 10 passed in 1.2s"
		return countBefore(out, " failed")
	default:
		return countBefore(out, " failing")
	}
}

// countBefore parses the integer immediately preceding marker, 0 if absent.
func countBefore(out, marker string) int {
	idx := strings.Index(out, marker)
	if idx <= 0 {
		return 0
	}
	start := idx
	for start > 0 && out[start-1] >= '0' && out[start-1] <= '9' {
		start--
	}
	n, err := strconv.Atoi(out[start:idx])
	if err != nil {
		return 0
	}
	return n
}

var (
	_ criteria.Validator = (*TestingValidator)(nil)
	_ criteria.AutoFixer = (*TestingValidator)(nil)
)
