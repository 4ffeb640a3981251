package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerDefaults(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
	assert.NoError(t, logger.Sync())
}

func TestNewLoggerInvalidFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"json format", func(c *Config) { c.Format = "json" }, false},
		{"bad format", func(c *Config) { c.Format = "" }, true},
		{"negative caller skip", func(c *Config) { c.Caller.Enabled = true; c.Caller.Skip = -1 }, true},
		{"empty field key", func(c *Config) { c.Fields = map[string]string{"": "x"} }, true},
		{"empty field value", func(c *Config) { c.Fields = map[string]string{"k": ""} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContextFieldsRunID(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithRunID(context.Background(), "run-42")

	tl.Info(ctx, "evaluating", zap.String("criterion", "testing"))

	tl.AssertLogged(t, zapcore.InfoLevel, "evaluating")
	tl.AssertField(t, "evaluating", "run.id", "run-42")
	tl.AssertField(t, "evaluating", "criterion", "testing")
}

func TestContextFieldsEmptyContext(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestFromContextFallsBackToNop(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// Should not panic and should log nothing anywhere.
	logger.Info(context.Background(), "ignored")
}

func TestWithLoggerRoundTrip(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Warn(ctx, "watch out")
	tl.AssertLogged(t, zapcore.WarnLevel, "watch out")
}

func TestNamedAndWith(t *testing.T) {
	tl := NewTestLogger()
	child := tl.Logger.Named("scoring").With(zap.String("project", "demo"))

	child.Info(context.Background(), "scored")

	entries := tl.FilterMessage("scored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scoring", entries[0].LoggerName)
	tl.AssertField(t, "scored", "project", "demo")
}
