package validators

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// SecurityValidator scans the project tree for leaked secrets and insecure
// file hygiene. Detection uses the Gitleaks default ruleset (800+ patterns).
type SecurityValidator struct {
	newDetector func() (*detect.Detector, error)
}

// NewSecurityValidator creates the security criterion validator.
func NewSecurityValidator() *SecurityValidator {
	return &SecurityValidator{newDetector: detect.NewDetectorDefaultConfig}
}

// Criterion implements criteria.Validator.
func (v *SecurityValidator) Criterion() criteria.Criterion { return criteria.Security }

// Evaluate scans text files for secrets, checks for tracked .env files, and
// flags world-writable files. Any detected secret fails the criterion.
func (v *SecurityValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	detector, err := v.newDetector()
	if err != nil {
		return nil, fmt.Errorf("initializing secret detector: %w", err)
	}

	var issues []criteria.Issue
	leaks := 0
	worldWritable := 0

	err = walkSource(ctx, projectRoot, func(path string, info fs.FileInfo) error {
		if info.Mode().Perm()&0o002 != 0 {
			worldWritable++
		}
		if info.Size() > maxScanFileSize || isBinaryName(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(projectRoot, path)
		for _, f := range detector.DetectString(string(content)) {
			leaks++
			issues = append(issues, issue(criteria.SeverityCritical,
				fmt.Sprintf("%s:%d: %s", rel, f.StartLine, f.Description)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	envTracked := fileExists(filepath.Join(projectRoot, ".env")) &&
		!gitignoreCovers(projectRoot, ".env")

	score := 100.0
	score -= 15 * float64(leaks)
	if envTracked {
		score -= 10
		issues = append(issues, issue(criteria.SeverityWarning,
			".env present and not covered by .gitignore"))
	}
	if worldWritable > 0 {
		score -= 5
		issues = append(issues, issue(criteria.SeverityWarning,
			fmt.Sprintf("%d world-writable files", worldWritable)))
	}
	if score < 0 {
		score = 0
	}

	status := criteria.StatusPass
	if leaks > 0 || envTracked {
		status = criteria.StatusFail
	}

	result := criteria.NewResult(criteria.Security, status, score, issues...)
	result.Details = map[string]string{"leaks": strconv.Itoa(leaks)}
	return result, nil
}

// Fix appends secret-bearing paths and .env to .gitignore so they stop being
// tracked. Paths already covered are left alone; when every candidate is
// covered the fix reports Applied=false.
func (v *SecurityValidator) Fix(ctx context.Context, projectRoot string) (*criteria.FixResult, error) {
	detector, err := v.newDetector()
	if err != nil {
		return nil, fmt.Errorf("initializing secret detector: %w", err)
	}

	candidates := map[string]bool{}
	if fileExists(filepath.Join(projectRoot, ".env")) {
		candidates[".env"] = true
	}
	err = walkSource(ctx, projectRoot, func(path string, info fs.FileInfo) error {
		if info.Size() > maxScanFileSize || isBinaryName(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if len(detector.DetectString(string(content))) > 0 {
			rel, _ := filepath.Rel(projectRoot, path)
			candidates[rel] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var missing []string
	for rel := range candidates {
		if !gitignoreCovers(projectRoot, rel) {
			missing = append(missing, rel)
		}
	}
	if len(missing) == 0 {
		return &criteria.FixResult{Applied: false, Description: "no uncovered secret-bearing files"}, nil
	}
	sort.Strings(missing)

	gitignore := filepath.Join(projectRoot, ".gitignore")
	existing, _ := os.ReadFile(gitignore)
	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	for _, rel := range missing {
		b.WriteString(rel + "\n")
	}
	if err := os.WriteFile(gitignore, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("updating .gitignore: %w", err)
	}
	return &criteria.FixResult{
		Applied:     true,
		Description: fmt.Sprintf("added %d entries to .gitignore", len(missing)),
	}, nil
}

// gitignoreCovers reports whether rel appears as an exact entry in the
// project's .gitignore. Pattern matching beyond exact entries is left to git
// itself.
func gitignoreCovers(projectRoot, rel string) bool {
	content, err := os.ReadFile(filepath.Join(projectRoot, ".gitignore"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == rel {
			return true
		}
	}
	return false
}

// isBinaryName filters obvious non-text files from content scans.
func isBinaryName(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".ico", ".pdf", ".zip", ".gz",
		".tar", ".so", ".dylib", ".dll", ".exe", ".bin", ".woff", ".woff2":
		return true
	}
	return false
}

var (
	_ criteria.Validator = (*SecurityValidator)(nil)
	_ criteria.AutoFixer = (*SecurityValidator)(nil)
)
