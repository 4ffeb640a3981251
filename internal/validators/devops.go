package validators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

// staleCommitAge marks a repository as dormant for scoring purposes.
const staleCommitAge = 90 * 24 * time.Hour

// DevOpsValidator inspects version control and delivery automation: the git
// repository itself (via go-git), CI pipeline definitions, and build
// tooling.
type DevOpsValidator struct{}

// NewDevOpsValidator creates the devops criterion validator.
func NewDevOpsValidator() *DevOpsValidator {
	return &DevOpsValidator{}
}

// Criterion implements criteria.Validator.
func (v *DevOpsValidator) Criterion() criteria.Criterion { return criteria.DevOps }

// Evaluate scores repository health (30), CI pipeline presence and
// parseability (50), and build tooling (20).
func (v *DevOpsValidator) Evaluate(ctx context.Context, projectRoot string) (*criteria.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var score float64
	var issues []criteria.Issue
	details := map[string]string{}

	repo, err := git.PlainOpen(projectRoot)
	switch {
	case errors.Is(err, git.ErrRepositoryNotExists):
		issues = append(issues, issue(criteria.SeverityError, "not a git repository"))
	case err != nil:
		issues = append(issues, issue(criteria.SeverityWarning,
			fmt.Sprintf("cannot open git repository: %v", err)))
	default:
		score += 10
		if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
			score += 10
		} else {
			issues = append(issues, issue(criteria.SeverityWarning, "no git remote configured"))
		}
		if head, err := repo.Head(); err == nil {
			details["head"] = head.Hash().String()
			if commit, err := repo.CommitObject(head.Hash()); err == nil {
				if time.Since(commit.Committer.When) <= staleCommitAge {
					score += 10
				} else {
					issues = append(issues, issue(criteria.SeverityInfo,
						fmt.Sprintf("last commit older than %d days", int(staleCommitAge.Hours()/24))))
				}
			}
		}
	}

	pipelines, parseErrs := v.findPipelines(projectRoot)
	details["pipelines"] = strconv.Itoa(pipelines)
	if pipelines > 0 {
		score += 50
		for _, e := range parseErrs {
			score -= 10
			issues = append(issues, issue(criteria.SeverityError, e))
		}
	} else {
		issues = append(issues, issue(criteria.SeverityError, "no CI pipeline definitions found"))
	}

	if firstExisting(projectRoot, "Makefile", "Dockerfile", "Taskfile.yml", "justfile") != "" {
		score += 20
	} else {
		issues = append(issues, issue(criteria.SeverityInfo, "no build tooling (Makefile, Dockerfile)"))
	}

	if score < 0 {
		score = 0
	}
	result := criteria.NewResult(criteria.DevOps, statusFor(score, 60), score, issues...)
	result.Details = details
	return result, nil
}

// findPipelines counts CI definitions and validates that each parses as
// YAML. Returns the count and a message per unparseable definition.
func (v *DevOpsValidator) findPipelines(projectRoot string) (int, []string) {
	var candidates []string

	workflows := filepath.Join(projectRoot, ".github", "workflows")
	if entries, err := os.ReadDir(workflows); err == nil {
		for _, e := range entries {
			name := e.Name()
			if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
				candidates = append(candidates, filepath.Join(workflows, name))
			}
		}
	}
	for _, name := range []string{".gitlab-ci.yml", ".circleci/config.yml", "azure-pipelines.yml"} {
		p := filepath.Join(projectRoot, name)
		if fileExists(p) {
			candidates = append(candidates, p)
		}
	}

	var parseErrs []string
	for _, p := range candidates {
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var doc map[string]interface{}
		if err := yaml.Unmarshal(content, &doc); err != nil {
			rel, _ := filepath.Rel(projectRoot, p)
			parseErrs = append(parseErrs, fmt.Sprintf("pipeline %s is not valid YAML: %v", rel, err))
		}
	}
	return len(candidates), parseErrs
}

var _ criteria.Validator = (*DevOpsValidator)(nil)
