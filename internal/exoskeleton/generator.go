package exoskeleton

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// manifestName is the configuration file recording which template produced
// the scaffolding, under the root automation directory.
const manifestName = ".dod/manifest.yaml"

// Manifest records provenance for idempotent re-runs and force detection.
type Manifest struct {
	Template    string    `yaml:"template"`
	Version     string    `yaml:"version"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

// DecisionAction is what the generator decided for one artifact.
type DecisionAction string

const (
	ActionCreate    DecisionAction = "create"
	ActionSkip      DecisionAction = "skip"
	ActionOverwrite DecisionAction = "overwrite"
)

// Decision is the per-artifact outcome. Dry runs return the same decision
// list a real run would, with zero writes.
type Decision struct {
	Path   string         `json:"path"`
	Dir    bool           `json:"dir,omitempty"`
	Action DecisionAction `json:"action"`
}

// Result summarizes one generation run.
type Result struct {
	Template           string     `json:"template"`
	DryRun             bool       `json:"dry_run,omitempty"`
	FilesCreated       int        `json:"files_created"`
	FilesSkipped       int        `json:"files_skipped"`
	DirectoriesCreated int        `json:"directories_created"`
	Decisions          []Decision `json:"decisions"`
}

// Options configure one generation run.
type Options struct {
	Template string
	Force    bool
	DryRun   bool

	// Filter restricts generation to matching artifacts. Nil keeps all.
	Filter func(Artifact) bool
	// NoManifest suppresses the manifest write, for partial generations
	// that should not mark the project as fully scaffolded.
	NoManifest bool
}

// PipelineFilter matches the pipeline artifacts of a template: the
// automation pipeline definitions and the CI workflow stubs.
func PipelineFilter(a Artifact) bool {
	return strings.HasPrefix(a.Path, ".dod/pipelines") || strings.HasPrefix(a.Path, ".github")
}

// Generator materializes exoskeleton templates into project trees.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate resolves the named template and materializes each artifact in
// order. Existing artifacts are skipped unless Force; DryRun computes the
// full decision list without touching the filesystem.
func (g *Generator) Generate(ctx context.Context, projectRoot string, opts Options) (*Result, error) {
	tpl, err := LookupTemplate(opts.Template)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(projectRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", projectRoot)
	}

	result := &Result{Template: tpl.Name, DryRun: opts.DryRun}

	for _, artifact := range tpl.Artifacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Filter != nil && !opts.Filter(artifact) {
			continue
		}
		decision, err := g.apply(projectRoot, artifact, opts)
		if err != nil {
			return nil, err
		}
		result.Decisions = append(result.Decisions, decision)
		switch {
		case artifact.Dir && decision.Action == ActionCreate:
			result.DirectoriesCreated++
		case !artifact.Dir && decision.Action == ActionSkip:
			result.FilesSkipped++
		case !artifact.Dir:
			result.FilesCreated++
		}
	}

	if !opts.DryRun && !opts.NoManifest {
		if err := g.writeManifest(projectRoot, tpl.Name); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// apply decides and, outside dry runs, performs one artifact write.
func (g *Generator) apply(projectRoot string, artifact Artifact, opts Options) (Decision, error) {
	abs := filepath.Join(projectRoot, artifact.Path)
	decision := Decision{Path: artifact.Path, Dir: artifact.Dir}

	_, statErr := os.Stat(abs)
	exists := statErr == nil

	switch {
	case artifact.Dir && exists:
		decision.Action = ActionSkip
	case artifact.Dir:
		decision.Action = ActionCreate
		if !opts.DryRun {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return decision, fmt.Errorf("creating directory %s: %w", artifact.Path, err)
			}
		}
	case exists && !opts.Force:
		decision.Action = ActionSkip
	default:
		decision.Action = ActionCreate
		if exists {
			decision.Action = ActionOverwrite
		}
		if !opts.DryRun {
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return decision, fmt.Errorf("creating parent of %s: %w", artifact.Path, err)
			}
			if err := os.WriteFile(abs, []byte(artifact.Content), 0o644); err != nil {
				return decision, fmt.Errorf("writing %s: %w", artifact.Path, err)
			}
		}
	}
	return decision, nil
}

func (g *Generator) writeManifest(projectRoot, template string) error {
	manifest := Manifest{
		Template:    template,
		Version:     TemplateVersion,
		GeneratedAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(projectRoot, manifestName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating automation directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest from a previously scaffolded project.
// Returns os.ErrNotExist when the project has no exoskeleton.
func ReadManifest(projectRoot string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(projectRoot, manifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
