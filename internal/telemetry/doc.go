// Package telemetry provides OpenTelemetry instrumentation for dodctl.
//
// It manages the tracer and meter providers and the ActionRecorder, which
// emits exactly one structured event per orchestrator-level operation. The
// attribute contract is fixed; emission happens on every exit path,
// including failures and not-implemented operations. Telemetry failures
// degrade gracefully and never fail the operation being recorded.
package telemetry
