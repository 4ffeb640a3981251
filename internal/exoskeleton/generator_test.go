package exoskeleton

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotTree lists every path under root, for before/after diffing.
func snapshotTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if path != root {
			paths = append(paths, path)
		}
		return nil
	})
	require.NoError(t, err)
	return paths
}

func TestGenerateStandard(t *testing.T) {
	root := t.TempDir()
	result, err := NewGenerator().Generate(context.Background(), root, Options{Template: "standard"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.FilesCreated)
	assert.Equal(t, 0, result.FilesSkipped)
	assert.Equal(t, 3, result.DirectoriesCreated)
	assert.FileExists(t, filepath.Join(root, ".dod", "pipelines", "ci.yaml"))
	assert.FileExists(t, filepath.Join(root, ".github", "workflows", "dod.yml"))

	manifest, err := ReadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, "standard", manifest.Template)
	assert.Equal(t, TemplateVersion, manifest.Version)
	assert.False(t, manifest.GeneratedAt.IsZero())
}

func TestGenerateRerunSkips(t *testing.T) {
	root := t.TempDir()
	gen := NewGenerator()
	ctx := context.Background()

	_, err := gen.Generate(ctx, root, Options{Template: "standard"})
	require.NoError(t, err)

	second, err := gen.Generate(ctx, root, Options{Template: "standard"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesCreated)
	assert.Equal(t, 3, second.FilesSkipped)
	assert.Equal(t, 0, second.DirectoriesCreated)
	for _, d := range second.Decisions {
		assert.Equal(t, ActionSkip, d.Action, "artifact %s", d.Path)
	}
}

func TestGenerateForceOverwrites(t *testing.T) {
	root := t.TempDir()
	gen := NewGenerator()
	ctx := context.Background()

	_, err := gen.Generate(ctx, root, Options{Template: "standard"})
	require.NoError(t, err)

	// Mutate a generated file, then force.
	ci := filepath.Join(root, ".dod", "pipelines", "ci.yaml")
	require.NoError(t, os.WriteFile(ci, []byte("tampered\n"), 0o644))

	result, err := gen.Generate(ctx, root, Options{Template: "standard", Force: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FilesCreated, "force re-materializes every file")

	content, err := os.ReadFile(ci)
	require.NoError(t, err)
	assert.NotEqual(t, "tampered\n", string(content))
}

func TestGenerateDryRunIsNoOp(t *testing.T) {
	root := t.TempDir()
	gen := NewGenerator()
	ctx := context.Background()

	before := snapshotTree(t, root)
	dry, err := gen.Generate(ctx, root, Options{Template: "enterprise", DryRun: true})
	require.NoError(t, err)
	after := snapshotTree(t, root)

	assert.Equal(t, before, after, "dry run must not touch the tree")
	assert.True(t, dry.DryRun)

	// The decision list must match what a real run then reports.
	real, err := gen.Generate(ctx, root, Options{Template: "enterprise"})
	require.NoError(t, err)
	assert.Equal(t, dry.Decisions, real.Decisions)
	assert.Equal(t, dry.FilesCreated, real.FilesCreated)
	assert.Equal(t, dry.DirectoriesCreated, real.DirectoriesCreated)
}

func TestGeneratePipelineFilter(t *testing.T) {
	root := t.TempDir()
	result, err := NewGenerator().Generate(context.Background(), root, Options{
		Template:   "standard",
		Filter:     PipelineFilter,
		NoManifest: true,
	})
	require.NoError(t, err)

	for _, d := range result.Decisions {
		assert.True(t, strings.HasPrefix(d.Path, ".dod/pipelines") || strings.HasPrefix(d.Path, ".github"),
			"unexpected artifact %s", d.Path)
	}
	assert.FileExists(t, filepath.Join(root, ".dod", "pipelines", "ci.yaml"))
	assert.FileExists(t, filepath.Join(root, ".github", "workflows", "dod.yml"))
	assert.NoFileExists(t, filepath.Join(root, ".dod", "manifest.yaml"))
	assert.NoFileExists(t, filepath.Join(root, ".dod", "perf.yaml"))
}

func TestGenerateUnknownTemplate(t *testing.T) {
	_, err := NewGenerator().Generate(context.Background(), t.TempDir(), Options{Template: "cosmic"})
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestGenerateInvalidRoot(t *testing.T) {
	_, err := NewGenerator().Generate(context.Background(), "/nonexistent/project/root", Options{Template: "standard"})
	assert.Error(t, err)
}

func TestTemplateCatalog(t *testing.T) {
	for _, name := range TemplateNames() {
		tpl, err := LookupTemplate(name)
		require.NoError(t, err)
		assert.Equal(t, name, tpl.Name)
		assert.NotEmpty(t, tpl.Artifacts)

		// Directories must precede the files placed inside them.
		seenDirs := map[string]bool{}
		for _, a := range tpl.Artifacts {
			if a.Dir {
				seenDirs[a.Path] = true
				continue
			}
			parent := filepath.Dir(a.Path)
			if parent != "." && parent != ".github" {
				assert.True(t, seenDirs[parent], "template %s: %s precedes its directory", name, a.Path)
			}
		}
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
