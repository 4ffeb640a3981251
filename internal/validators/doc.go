// Package validators implements the criterion validators behind the
// Definition-of-Done evaluation.
//
// Each validator is independent, side-effect-isolated to its own concern,
// and non-mutating under Evaluate. External tools are consulted only when
// present; a missing tool yields a skipped result with an explanatory issue,
// never a fabricated score. Validators that also implement
// criteria.AutoFixer offer an idempotent remediation step.
package validators
