// Package logging provides structured logging for dodctl, built on Zap.
//
// Logs go to stderr so stdout stays clean for reports and JSON output.
// Loggers are context-aware: trace correlation from OpenTelemetry spans and
// the automation run ID are attached to every entry automatically.
package logging
