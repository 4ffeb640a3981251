// Package exoskeleton materializes automation scaffolding into a project
// tree: pipeline definitions, policy stubs, and the configuration that makes
// re-runs idempotent.
package exoskeleton

import (
	"errors"
	"fmt"
)

// ErrUnknownTemplate is returned for template names outside the catalog.
var ErrUnknownTemplate = errors.New("unknown exoskeleton template")

// TemplateVersion tags generated manifests so future runs can detect which
// catalog produced them.
const TemplateVersion = "1"

// Artifact is one file or directory a template materializes, relative to the
// project root.
type Artifact struct {
	Path    string
	Dir     bool
	Content string
}

// Template is a named, immutable artifact list. Artifacts are ordered so
// directories precede the files inside them.
type Template struct {
	Name        string
	Description string
	Artifacts   []Artifact
}

const ciPipeline = `# Continuous integration pipeline definition.
stages:
  - lint
  - test
  - security
lint:
  run: make lint
test:
  run: make test
security:
  run: make security-scan
`

const cdPipeline = `# Continuous delivery pipeline definition.
stages:
  - build
  - publish
  - deploy
build:
  run: make build
publish:
  run: make publish
deploy:
  approval: required
  run: make deploy
`

const workflowStub = `name: definition-of-done
on:
  push:
  pull_request:
jobs:
  evaluate:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Evaluate readiness criteria
        run: dodctl evaluate . --format json --output dod-report.json
`

const perfBudget = `# Performance budget consulted by the performance criterion.
p99_ms: 200
max_rss_mb: 512
`

const compliancePolicy = `# Policy files required by the compliance criterion.
required_files:
  - LICENSE
  - SECURITY.md
  - CODEOWNERS
`

const securityStub = `# Security Policy

Report vulnerabilities privately to the maintainers. Do not open public
issues for security reports.
`

const codeownersStub = `# Assign default reviewers for all paths.
* @maintainers
`

const agentsManifest = `# Agent roles consulted by AI-native automation.
roles:
  - name: reviewer
    goal: review changes against the definition of done
  - name: remediator
    goal: draft fixes for failing criteria
`

const evalPipeline = `# Evaluation pipeline for AI-assisted checks.
stages:
  - generate
  - judge
generate:
  run: make agent-generate
judge:
  run: make agent-judge
`

// catalog is the closed template set. Selection happens at generation time;
// definitions are immutable.
var catalog = map[string]Template{
	"standard": {
		Name:        "standard",
		Description: "CI pipeline, readiness workflow, and performance budget",
		Artifacts: []Artifact{
			{Path: ".dod", Dir: true},
			{Path: ".dod/pipelines", Dir: true},
			{Path: ".dod/pipelines/ci.yaml", Content: ciPipeline},
			{Path: ".dod/perf.yaml", Content: perfBudget},
			{Path: ".github/workflows", Dir: true},
			{Path: ".github/workflows/dod.yml", Content: workflowStub},
		},
	},
	"enterprise": {
		Name:        "enterprise",
		Description: "standard plus delivery pipeline, compliance policy, and ownership stubs",
		Artifacts: []Artifact{
			{Path: ".dod", Dir: true},
			{Path: ".dod/pipelines", Dir: true},
			{Path: ".dod/pipelines/ci.yaml", Content: ciPipeline},
			{Path: ".dod/pipelines/cd.yaml", Content: cdPipeline},
			{Path: ".dod/policies", Dir: true},
			{Path: ".dod/policies/compliance.yaml", Content: compliancePolicy},
			{Path: ".dod/perf.yaml", Content: perfBudget},
			{Path: ".github/workflows", Dir: true},
			{Path: ".github/workflows/dod.yml", Content: workflowStub},
			{Path: ".github/CODEOWNERS", Content: codeownersStub},
			{Path: "SECURITY.md", Content: securityStub},
		},
	},
	"ai-native": {
		Name:        "ai-native",
		Description: "standard plus agent roles and an AI evaluation pipeline",
		Artifacts: []Artifact{
			{Path: ".dod", Dir: true},
			{Path: ".dod/pipelines", Dir: true},
			{Path: ".dod/pipelines/ci.yaml", Content: ciPipeline},
			{Path: ".dod/pipelines/eval.yaml", Content: evalPipeline},
			{Path: ".dod/agents.yaml", Content: agentsManifest},
			{Path: ".dod/perf.yaml", Content: perfBudget},
			{Path: ".github/workflows", Dir: true},
			{Path: ".github/workflows/dod.yml", Content: workflowStub},
		},
	},
}

// LookupTemplate resolves a template by name.
func LookupTemplate(name string) (Template, error) {
	tpl, ok := catalog[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return tpl, nil
}

// TemplateNames lists the catalog in a stable order.
func TemplateNames() []string {
	return []string{"standard", "enterprise", "ai-native"}
}
