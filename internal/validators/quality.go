package validators

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// linter binds a project kind to its ecosystem lint tool.
type linter struct {
	tool string
	args []string
}

// CodeQualityValidator runs the ecosystem linter when one is installed and
// falls back to source heuristics (oversized files, TODO density) otherwise.
// Both modes are genuine measurements; the mode used is recorded in Details.
type CodeQualityValidator struct {
	lookPath lookPathFunc
	run      runFunc
}

// NewCodeQualityValidator creates the code_quality criterion validator.
func NewCodeQualityValidator() *CodeQualityValidator {
	return &CodeQualityValidator{lookPath: exec.LookPath, run: defaultRun}
}

// Criterion implements criteria.Validator.
func (v *CodeQualityValidator) Criterion() criteria.Criterion { return criteria.CodeQuality }

// Evaluate scores lint findings per source file, or heuristic findings when
// no linter is installed.
func (v *CodeQualityValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	if l := v.detectLinter(projectRoot); l != nil {
		return v.lintScore(ctx, projectRoot, l)
	}
	return v.heuristicScore(ctx, projectRoot)
}

func (v *CodeQualityValidator) detectLinter(root string) *linter {
	if fileExists(root + "/go.mod") {
		if _, err := v.lookPath("golangci-lint"); err == nil {
			return &linter{tool: "golangci-lint", args: []string{"run", "--out-format", "line-number"}}
		}
		if _, err := v.lookPath("go"); err == nil {
			return &linter{tool: "go", args: []string{"vet", "./..."}}
		}
	}
	if fileExists(root + "/pyproject.toml") {
		if _, err := v.lookPath("ruff"); err == nil {
			return &linter{tool: "ruff", args: []string{"check", "."}}
		}
	}
	if fileExists(root + "/package.json") {
		if _, err := v.lookPath("eslint"); err == nil {
			return &linter{tool: "eslint", args: []string{"."}}
		}
	}
	return nil
}

func (v *CodeQualityValidator) lintScore(ctx context.Context, root string, l *linter) (*criteria.Result, error) {
	out, exitCode, err := v.run(ctx, root, l.tool, l.args...)
	// Never interpret the exit code of a run the deadline killed.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return criteria.NewUnknown(criteria.CodeQuality,
			fmt.Sprintf("linter did not complete: %v", ctxErr)), nil
	}
	if err != nil {
		return criteria.NewUnknown(criteria.CodeQuality,
			fmt.Sprintf("linter did not complete: %v", err)), nil
	}

	findings := 0
	if exitCode != 0 {
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if strings.TrimSpace(line) != "" {
				findings++
			}
		}
	}

	score := 100 - 5*float64(findings)
	if score < 0 {
		score = 0
	}
	var issues []criteria.Issue
	if findings > 0 {
		issues = append(issues, issue(criteria.SeverityWarning,
			fmt.Sprintf("%s reported %d findings", l.tool, findings)))
	}
	result := criteria.NewResult(criteria.CodeQuality, statusFor(score, 60), score, issues...)
	result.Details = map[string]string{"mode": "lint", "tool": l.tool, "findings": strconv.Itoa(findings)}
	return result, nil
}

// heuristicScore measures oversized source files and TODO/FIXME density when
// no linter is available.
func (v *CodeQualityValidator) heuristicScore(ctx context.Context, root string) (*criteria.Result, error) {
	sourceFiles, longFiles, todos := 0, 0, 0

	err := walkSource(ctx, root, func(path string, info fs.FileInfo) error {
		if !isSourceName(path) || info.Size() > maxScanFileSize {
			return nil
		}
		sourceFiles++
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		lines := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxScanFileSize)
		for scanner.Scan() {
			lines++
			text := scanner.Text()
			if strings.Contains(text, "TODO") || strings.Contains(text, "FIXME") {
				todos++
			}
		}
		if lines > 800 {
			longFiles++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sourceFiles == 0 {
		return criteria.NewResult(criteria.CodeQuality, criteria.StatusFail, 0,
			issue(criteria.SeverityError, "no source files found")), nil
	}

	score := 100.0
	score -= 10 * float64(longFiles)
	score -= 2 * float64(todos)
	if score < 0 {
		score = 0
	}

	var issues []criteria.Issue
	if longFiles > 0 {
		issues = append(issues, issue(criteria.SeverityWarning,
			fmt.Sprintf("%d files exceed 800 lines", longFiles)))
	}
	if todos > 0 {
		issues = append(issues, issue(criteria.SeverityInfo,
			fmt.Sprintf("%d TODO/FIXME markers", todos)))
	}
	result := criteria.NewResult(criteria.CodeQuality, statusFor(score, 60), score, issues...)
	result.Details = map[string]string{
		"mode":         "heuristic",
		"source_files": strconv.Itoa(sourceFiles),
	}
	return result, nil
}

func isSourceName(path string) bool {
	switch {
	case strings.HasSuffix(path, ".go"),
		strings.HasSuffix(path, ".py"),
		strings.HasSuffix(path, ".js"),
		strings.HasSuffix(path, ".ts"),
		strings.HasSuffix(path, ".rs"),
		strings.HasSuffix(path, ".java"),
		strings.HasSuffix(path, ".rb"):
		return true
	}
	return false
}

var _ criteria.Validator = (*CodeQualityValidator)(nil)
