package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewDisabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)
	assert.False(t, tel.IsEnabled())
	assert.False(t, tel.Degraded())

	// No-op instance still hands out working tracers and shuts down cleanly.
	_, span := tel.Tracer("test").Start(context.Background(), "op")
	span.End()
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults disabled", func(c *Config) {}, false},
		{"enabled defaults", func(c *Config) { c.Enabled = true }, false},
		{"missing endpoint", func(c *Config) { c.Enabled = true; c.Endpoint = "" }, true},
		{"missing service name", func(c *Config) { c.Enabled = true; c.ServiceName = "" }, true},
		{"rate too high", func(c *Config) { c.Enabled = true; c.Sampling.Rate = 1.5 }, true},
		{"rate negative", func(c *Config) { c.Enabled = true; c.Sampling.Rate = -0.1 }, true},
		{"http protocol", func(c *Config) { c.Enabled = true; c.Protocol = "http/protobuf" }, false},
		{"bad protocol", func(c *Config) { c.Enabled = true; c.Protocol = "thrift" }, true},
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

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4318", stripScheme("https://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("http://collector:4318"))
	assert.Equal(t, "collector:4318", stripScheme("collector:4318"))
}

func TestRecorderEmitsSpan(t *testing.T) {
	tt := NewTestTelemetry()
	rec := NewActionRecorder(tt.Telemetry)

	score := 85.0
	rec.Record(context.Background(), Event{
		Operation:       "validate_criteria",
		ProjectPath:     "/tmp/project",
		Params:          map[string]string{"parallel": "true"},
		Duration:        120 * time.Millisecond,
		Outcome:         OutcomeSuccess,
		CriteriaPassed:  6,
		CriteriaSkipped: 1,
		WeightedScore:   &score,
	})

	tt.AssertSpanExists(t, "dod.validate_criteria")
	tt.AssertSpanAttribute(t, "dod.validate_criteria", "dod.outcome", "success")
	tt.AssertSpanAttribute(t, "dod.validate_criteria", "dod.project_path", "/tmp/project")
	tt.AssertSpanAttribute(t, "dod.validate_criteria", "dod.criteria_passed", int64(6))
	tt.AssertSpanAttribute(t, "dod.validate_criteria", "dod.weighted_score", 85.0)
	tt.AssertSpanAttribute(t, "dod.validate_criteria", "dod.param.parallel", "true")

	span := tt.SpanByName("dod.validate_criteria")
	assert.GreaterOrEqual(t, span.EndTime().Sub(span.StartTime()), 120*time.Millisecond)
}

func TestRecorderFailureSetsStatus(t *testing.T) {
	tt := NewTestTelemetry()
	rec := NewActionRecorder(tt.Telemetry)

	rec.Record(context.Background(), Event{
		Operation: "execute_complete_automation",
		Outcome:   OutcomeFailure,
		Err:       errors.New("validator crashed"),
	})

	span := tt.SpanByName("dod.execute_complete_automation")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
	tt.AssertSpanAttribute(t, "dod.execute_complete_automation", "dod.error", "validator crashed")
}

func TestRecorderOmitsScoreWhenUnknown(t *testing.T) {
	tt := NewTestTelemetry()
	rec := NewActionRecorder(tt.Telemetry)

	rec.Record(context.Background(), Event{
		Operation: "run_e2e_tests",
		Outcome:   OutcomeNotImplemented,
	})

	span := tt.SpanByName("dod.run_e2e_tests")
	require.NotNil(t, span)
	for _, attr := range span.Attributes() {
		assert.NotEqual(t, "dod.weighted_score", string(attr.Key))
	}
}

func TestRecorderMetrics(t *testing.T) {
	tt := NewTestTelemetry()
	rec := NewActionRecorder(tt.Telemetry)
	ctx := context.Background()

	rec.Record(ctx, Event{Operation: "analyze_project", Outcome: OutcomeSuccess, Duration: 5 * time.Millisecond})
	rec.Record(ctx, Event{Operation: "analyze_project", Outcome: OutcomeSuccess, Duration: 7 * time.Millisecond})

	require.NoError(t, tt.MetricReader.ForceFlush(ctx))
	collected := tt.MetricReader.Metrics()
	require.Len(t, collected, 1)

	var names []string
	for _, scope := range collected[0].ScopeMetrics {
		for _, m := range scope.Metrics {
			names = append(names, m.Name)
			if m.Name == "dod.actions" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(2), sum.DataPoints[0].Value)
			}
		}
	}
	assert.Contains(t, names, "dod.actions")
	assert.Contains(t, names, "dod.action.duration")
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var rec *ActionRecorder
	rec.Record(context.Background(), Event{Operation: "noop", Outcome: OutcomeSkipped})
}
