package orchestrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/dodctl/internal/exoskeleton"
	"github.com/fyrsmithlabs/dodctl/internal/report"
)

func TestCreateExoskeleton(t *testing.T) {
	h := newHarness(t, nil, nil)
	root := t.TempDir()

	result, err := h.orch.CreateExoskeleton(context.Background(), root, exoskeleton.Options{Template: "standard"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FilesCreated)
	assert.FileExists(t, filepath.Join(root, ".dod", "manifest.yaml"))

	require.Len(t, h.tel.Spans(), 1)
	h.tel.AssertSpanExists(t, "dod.create_exoskeleton")
	h.tel.AssertSpanAttribute(t, "dod.create_exoskeleton", "dod.files_created", int64(3))
	h.tel.AssertSpanAttribute(t, "dod.create_exoskeleton", "dod.param.template", "standard")
}

func TestCreateExoskeletonDryRunNoWrites(t *testing.T) {
	h := newHarness(t, nil, nil)
	root := t.TempDir()

	result, err := h.orch.CreateExoskeleton(context.Background(), root, exoskeleton.Options{
		Template: "standard",
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FilesCreated, "dry run reports the decisions a real run would make")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not touch the tree")
}

func TestCreateExoskeletonUnknownTemplate(t *testing.T) {
	h := newHarness(t, nil, nil)

	_, err := h.orch.CreateExoskeleton(context.Background(), t.TempDir(), exoskeleton.Options{Template: "cosmic"})
	require.Error(t, err)

	require.Len(t, h.tel.Spans(), 1, "failure path still emits telemetry")
	h.tel.AssertSpanAttribute(t, "dod.create_exoskeleton", "dod.outcome", "failure")
}

func TestGeneratePipelineOnlyPipelines(t *testing.T) {
	h := newHarness(t, nil, nil)
	root := t.TempDir()

	result, err := h.orch.GeneratePipeline(context.Background(), root, exoskeleton.Options{})
	require.NoError(t, err)

	for _, d := range result.Decisions {
		assert.True(t, strings.HasPrefix(d.Path, ".dod/pipelines") || strings.HasPrefix(d.Path, ".github"),
			"unexpected artifact %s", d.Path)
	}
	assert.FileExists(t, filepath.Join(root, ".dod", "pipelines", "ci.yaml"))
	assert.NoFileExists(t, filepath.Join(root, ".dod", "manifest.yaml"))
	h.tel.AssertSpanExists(t, "dod.generate_pipeline")
}

func TestExecuteCompleteAutomation(t *testing.T) {
	h := newHarness(t, nil, nil)
	root := t.TempDir()

	result, err := h.orch.ExecuteCompleteAutomation(context.Background(), root, AutomationOptions{
		Evaluate:    EvaluateOptions{Parallel: true},
		Exoskeleton: exoskeleton.Options{Template: "standard"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Phase{PhaseInit, PhaseValidate, PhaseScore, PhaseExoskeleton, PhaseReport, PhaseDone}, result.Phases)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.OverallPass)
	require.NotNil(t, result.Exoskeleton)
	assert.Equal(t, 3, result.Exoskeleton.FilesCreated)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, h.tel.Spans(), 1)
	h.tel.AssertSpanExists(t, "dod.execute_complete_automation")
	h.tel.AssertSpanAttribute(t, "dod.execute_complete_automation", "dod.files_created", int64(3))
	h.tel.AssertSpanAttribute(t, "dod.execute_complete_automation", "dod.weighted_score", 90.0)
}

func TestExecuteCompleteAutomationAutoFixPhase(t *testing.T) {
	h := newHarness(t, nil, nil)

	result, err := h.orch.ExecuteCompleteAutomation(context.Background(), t.TempDir(), AutomationOptions{
		Evaluate:        EvaluateOptions{AutoFix: true},
		SkipExoskeleton: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhaseInit, PhaseValidate, PhaseAutoFix, PhaseScore, PhaseReport, PhaseDone}, result.Phases)
	assert.Nil(t, result.Exoskeleton)
}

func TestExecuteCompleteAutomationFailureTerminal(t *testing.T) {
	h := newHarness(t, nil, nil)

	result, err := h.orch.ExecuteCompleteAutomation(context.Background(), t.TempDir(), AutomationOptions{
		Exoskeleton: exoskeleton.Options{Template: "cosmic"},
	})
	require.Error(t, err)

	assert.Equal(t, PhaseFailed, result.Phases[len(result.Phases)-1])
	require.NotNil(t, result.Report, "partial results survive the failure")
	h.tel.AssertSpanAttribute(t, "dod.execute_complete_automation", "dod.outcome", "failure")
}

func TestRunE2ETestsNotImplemented(t *testing.T) {
	h := newHarness(t, nil, nil)

	err := h.orch.RunE2ETests(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))

	require.Len(t, h.tel.Spans(), 1, "not-implemented path still emits telemetry")
	h.tel.AssertSpanExists(t, "dod.run_e2e_tests")
	h.tel.AssertSpanAttribute(t, "dod.run_e2e_tests", "dod.outcome", "not_implemented")
}

func TestAnalyzeProject(t *testing.T) {
	h := newHarness(t, nil, nil)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module demo\n"), 0o644))
	_, err := h.orch.CreateExoskeleton(context.Background(), root, exoskeleton.Options{Template: "enterprise"})
	require.NoError(t, err)

	analysis, err := h.orch.AnalyzeProject(context.Background(), root, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "go", analysis.Language)
	assert.Equal(t, "go test", analysis.TestRunner)
	assert.False(t, analysis.GitRepo)
	assert.True(t, analysis.Scaffolded)
	assert.Equal(t, "enterprise", analysis.Template)
}

func TestAnalyzeProjectInsightsNotImplemented(t *testing.T) {
	h := newHarness(t, nil, nil)

	_, err := h.orch.AnalyzeProject(context.Background(), t.TempDir(), AnalyzeOptions{Insights: true})
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))
	h.tel.AssertSpanAttribute(t, "dod.analyze_project", "dod.outcome", "not_implemented")
}

func TestGenerateReportWritesOutput(t *testing.T) {
	h := newHarness(t, nil, nil)
	var buf bytes.Buffer

	rep, err := h.orch.GenerateReport(context.Background(), t.TempDir(), ReportOptions{
		Format: report.FormatMarkdown,
		Output: &buf,
	})
	require.NoError(t, err)
	assert.True(t, rep.OverallPass)
	assert.Contains(t, buf.String(), "# Definition of Done Report")
	h.tel.AssertSpanExists(t, "dod.generate_report")
}

func TestIsNotImplemented(t *testing.T) {
	assert.True(t, IsNotImplemented(&NotImplementedError{Action: ActionRunE2ETests, Feature: "e2e"}))
	assert.False(t, IsNotImplemented(os.ErrNotExist))
	assert.False(t, IsNotImplemented(nil))
}
