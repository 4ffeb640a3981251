package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
)

func TestParseCriteria(t *testing.T) {
	crits, err := parseCriteria([]string{"testing", "security"})
	require.NoError(t, err)
	assert.Equal(t, []criteria.Criterion{criteria.Testing, criteria.Security}, crits)

	_, err = parseCriteria([]string{"testing", "vibes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vibes")

	crits, err = parseCriteria(nil)
	require.NoError(t, err)
	assert.Empty(t, crits)
}

func TestOpenOutputStdout(t *testing.T) {
	for _, path := range []string{"", "-"} {
		w, closeFn, err := openOutput(path)
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, w)
		assert.NoError(t, closeFn())
	}
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	w, closeFn, err := openOutput(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestCommandRegistration(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"evaluate", "exoskeleton", "automate", "pipeline", "e2e", "analyze", "report"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestTemplateList(t *testing.T) {
	assert.Equal(t, "standard, enterprise, ai-native", templateList())
}
