package validators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// DocumentationValidator scores the project's written documentation surface.
type DocumentationValidator struct{}

// NewDocumentationValidator creates the documentation criterion validator.
func NewDocumentationValidator() *DocumentationValidator {
	return &DocumentationValidator{}
}

// Criterion implements criteria.Validator.
func (v *DocumentationValidator) Criterion() criteria.Criterion { return criteria.Documentation }

// Evaluate scores README presence and substance, a docs directory, and a
// changelog or examples. Documentation is always measurable; this validator
// never skips.
func (v *DocumentationValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var score float64
	var issues []criteria.Issue

	readme := firstExisting(projectRoot, "README.md", "README.rst", "README.txt", "README")
	if readme == "" {
		issues = append(issues, issue(criteria.SeverityError, "no README found"))
	} else {
		score += 40
		if info, err := os.Stat(readme); err == nil && info.Size() >= 300 {
			score += 20
		} else {
			issues = append(issues, issue(criteria.SeverityWarning,
				fmt.Sprintf("%s is under 300 bytes", filepath.Base(readme))))
		}
	}

	if dirExists(filepath.Join(projectRoot, "docs")) || dirExists(filepath.Join(projectRoot, "doc")) {
		score += 20
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no docs/ directory"))
	}

	if firstExisting(projectRoot, "CHANGELOG.md", "CHANGELOG") != "" ||
		dirExists(filepath.Join(projectRoot, "examples")) {
		score += 20
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no changelog or examples"))
	}

	return criteria.NewResult(criteria.Documentation, statusFor(score, 60), score, issues...), nil
}

// readmeSkeleton seeds new projects with the sections reviewers look for.
const readmeSkeleton = `# %s

## Overview

Describe what this project does and who it is for.

## Getting started

Describe installation and a minimal usage example.

## Development

Describe how to build and test the project.
`

// Fix writes a README skeleton when no README exists. Idempotent: a present
// README, including one written by a previous fix, applies nothing.
func (v *DocumentationValidator) Fix(ctx context.Context, projectRoot string) (*criteria.FixResult, error) {
	if firstExisting(projectRoot, "README.md", "README.rst", "README.txt", "README") != "" {
		return &criteria.FixResult{Applied: false, Description: "README already present"}, nil
	}
	name := filepath.Base(projectRoot)
	content := fmt.Sprintf(readmeSkeleton, name)
	if err := os.WriteFile(filepath.Join(projectRoot, "README.md"), []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("writing README skeleton: %w", err)
	}
	return &criteria.FixResult{Applied: true, Description: "seeded README.md skeleton"}, nil
}

var (
	_ criteria.Validator = (*DocumentationValidator)(nil)
	_ criteria.AutoFixer = (*DocumentationValidator)(nil)
)
