package model

// ActionKind identifies an operator command executed by the coordinator.
type ActionKind string

const (
	ActionNone     ActionKind = ""
	ActionRequest  ActionKind = "request"
	ActionDispatch ActionKind = "dispatch"
	ActionCancel   ActionKind = "cancel"
	ActionAlert    ActionKind = "emergency"
	ActionRoute    ActionKind = "route"
	ActionCall     ActionKind = "hospital_call"

	// ActionCrewReport journals a status change reported by a crew. It is not
	// an operator command.
	ActionCrewReport ActionKind = "crew_report"
)

// ParseActionKind maps the textual form used by the API to an ActionKind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "request", "call":
		return ActionRequest, true
	case "dispatch":
		return ActionDispatch, true
	case "cancel":
		return ActionCancel, true
	case "alert", "emergency":
		return ActionAlert, true
	case "optimize", "route":
		return ActionRoute, true
	case "hospital_call":
		return ActionCall, true
	default:
		return ActionNone, false
	}
}
