// Package orchestrator drives Definition-of-Done automation runs: a
// per-invocation state machine over validation, optional auto-fix, scoring,
// optional exoskeleton generation, and reporting.
//
// Validators run over a bounded worker pool with a per-validator timeout;
// cancellation is cooperative and unfinished criteria are reported with
// status unknown rather than discarded. Mutating stages serialize through a
// per-canonical-path lock. Every operation emits exactly one telemetry
// event, on every exit path.
package orchestrator
