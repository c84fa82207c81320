package model

import "fmt"

// PlanAction identifies what a single auto-pilot step does.
type PlanAction string

// Auto-pilot step actions.
const (
	ActionAnalyze     PlanAction = "ANALYZE"
	ActionEmailVendor PlanAction = "EMAIL_VENDOR"
	ActionRectify     PlanAction = "RECTIFY"
)

// Valid reports whether the action is one of the known step actions.
func (a PlanAction) Valid() bool {
	switch a {
	case ActionAnalyze, ActionEmailVendor, ActionRectify:
		return true
	default:
		return false
	}
}

// ParsePlanAction converts a string to a PlanAction. An unrecognized
// action is a contract violation of the plan-generation call, so it is
// an error rather than a pass-through.
func ParsePlanAction(s string) (PlanAction, error) {
	action := PlanAction(s)
	if !action.Valid() {
		return "", fmt.Errorf("unknown plan action: %q", s)
	}
	return action, nil
}

// PlanStep is a single step of an auto-pilot resolution plan.
type PlanStep struct {
	Action      PlanAction
	Description string
}

// Plan is an ordered sequence of steps for resolving a failed
// transaction, plus the model's reasoning for choosing them. A plan is
// created once per auto-pilot invocation and immutable afterwards.
type Plan struct {
	Reasoning string
	Steps     []PlanStep
}
