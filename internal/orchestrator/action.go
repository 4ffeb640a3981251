package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/dodctl/internal/telemetry"
)

// Action names one orchestrator-level operation.
type Action string

const (
	ActionCreateExoskeleton         Action = "create_exoskeleton"
	ActionExecuteCompleteAutomation Action = "execute_complete_automation"
	ActionValidateCriteria          Action = "validate_criteria"
	ActionGeneratePipeline          Action = "generate_pipeline"
	ActionRunE2ETests               Action = "run_e2e_tests"
	ActionAnalyzeProject            Action = "analyze_project"
	ActionGenerateReport            Action = "generate_report"
)

// Phase is one state of the automation state machine.
type Phase string

const (
	PhaseInit        Phase = "init"
	PhaseValidate    Phase = "validate"
	PhaseAutoFix     Phase = "auto_fix"
	PhaseScore       Phase = "score"
	PhaseExoskeleton Phase = "exoskeleton"
	PhaseReport      Phase = "report"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// AutomationAction records one operation: the unit the telemetry recorder
// emits. Produced per invocation, never persisted by the engine.
type AutomationAction struct {
	ID          string            `json:"id"`
	Action      Action            `json:"action"`
	ProjectPath string            `json:"project_path"`
	Params      map[string]string `json:"params,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Outcome     telemetry.Outcome `json:"outcome"`
	Error       string            `json:"error,omitempty"`
}

// NotImplementedError marks an operation outside current capability. It is
// raised instead of returning placeholder data, and the attempted operation
// still records telemetry.
type NotImplementedError struct {
	Action  Action
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s: %s is not implemented", e.Action, e.Feature)
}

// IsNotImplemented reports whether err is a NotImplementedError.
func IsNotImplemented(err error) bool {
	var target *NotImplementedError
	return errors.As(err, &target)
}
