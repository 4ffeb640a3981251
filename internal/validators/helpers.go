package validators

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// maxScanFiles bounds tree walks so one huge project cannot stall a
// validator past its deadline.
const maxScanFiles = 2000

// maxScanFileSize bounds per-file reads during content scans.
const maxScanFileSize = 1 << 20 // 1MB

// skipDirs are never descended into during source scans.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	".dod":         true,
}

// lookPathFunc resolves an external tool; swapped in tests.
type lookPathFunc func(name string) (string, error)

// runFunc executes an external tool in a directory and returns combined
// output plus the exit code; swapped in tests.
type runFunc func(ctx context.Context, dir, name string, args ...string) (string, int, error)

func defaultRun(ctx context.Context, dir, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	// A deadline kill surfaces as a plain exit error; the context is the
	// ground truth for whether the run was measured.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return string(out), -1, ctxErr
	}
	if err == nil {
		return string(out), 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode(), nil
	}
	return string(out), -1, err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// firstExisting returns the first path under root that exists as a file.
func firstExisting(root string, names ...string) string {
	for _, name := range names {
		p := filepath.Join(root, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// walkSource visits regular files under root, skipping ignored directories,
// stopping after maxScanFiles or on context cancellation.
func walkSource(ctx context.Context, root string, visit func(path string, info fs.FileInfo) error) error {
	seen := 0
	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are findings for other validators, not
			// reasons to abort the scan.
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			if skipDirs[info.Name()] && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		seen++
		if seen > maxScanFiles {
			return filepath.SkipAll
		}
		return visit(path, info)
	})
}

// countSuffix counts files under root with any of the given suffixes.
func countSuffix(ctx context.Context, root string, suffixes ...string) int {
	n := 0
	_ = walkSource(ctx, root, func(path string, info fs.FileInfo) error {
		for _, s := range suffixes {
			if strings.HasSuffix(path, s) {
				n++
				break
			}
		}
		return nil
	})
	return n
}

// statusFor derives pass/fail from a 0-100 score against a pass mark.
func statusFor(score, passMark float64) criteria.Status {
	if score >= passMark {
		return criteria.StatusPass
	}
	return criteria.StatusFail
}

// issue is shorthand for building a criteria.Issue.
func issue(sev criteria.Severity, msg string) criteria.Issue {
	return criteria.Issue{Severity: sev, Message: msg}
}
