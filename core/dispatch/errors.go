package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/medfleet/core/model"
)

var (
	// ErrSlotBusy reports that another command holds the action slot.
	ErrSlotBusy = errors.New("action slot busy")
	// ErrNoSelection reports that a targeted command has no selected ambulance.
	ErrNoSelection = errors.New("no ambulance selected")
	// ErrTargetNotFound reports that the targeted entity does not exist.
	ErrTargetNotFound = errors.New("target not found")
	// ErrBackendUnavailable reports that the crew-order backend refused the order.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrInvalidTransition reports a status change that the guard refused.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrClosed is returned by commands submitted after Close.
	ErrClosed = errors.New("coordinator closed")
)

// RejectReason explains a synchronous refusal.
type RejectReason string

const (
	ReasonSlotBusy    RejectReason = "slot_busy"
	ReasonNoSelection RejectReason = "no_selection"
)

// ActionRejected is returned synchronously when a command cannot start.
// The store and the notification are left untouched.
type ActionRejected struct {
	Action   model.ActionKind
	Reason   RejectReason
	InFlight model.ActionKind
}

func (e *ActionRejected) Error() string {
	if e.Reason == ReasonSlotBusy {
		return fmt.Sprintf("%s rejected: %s in flight", e.Action, e.InFlight)
	}
	return fmt.Sprintf("%s rejected: %s", e.Action, ErrNoSelection)
}

// Is matches the sentinel for the rejection reason.
func (e *ActionRejected) Is(target error) bool {
	switch e.Reason {
	case ReasonSlotBusy:
		return target == ErrSlotBusy
	case ReasonNoSelection:
		return target == ErrNoSelection
	}
	return false
}

// FailReason explains a failure detected after the latency phase.
type FailReason string

const (
	ReasonTargetNotFound     FailReason = "target_not_found"
	ReasonBackendUnavailable FailReason = "backend_unavailable"
)

// ActionFailed is reported when a started command could not apply its effect.
type ActionFailed struct {
	Action model.ActionKind
	Target string
	Reason FailReason
	Err    error
}

func (e *ActionFailed) Error() string {
	msg := string(e.Action)
	if e.Target != "" {
		msg += " " + e.Target
	}
	switch e.Reason {
	case ReasonTargetNotFound:
		msg += ": " + ErrTargetNotFound.Error()
	case ReasonBackendUnavailable:
		msg += ": " + ErrBackendUnavailable.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ActionFailed) Unwrap() error { return e.Err }

// Is matches the sentinel for the failure reason.
func (e *ActionFailed) Is(target error) bool {
	switch e.Reason {
	case ReasonTargetNotFound:
		return target == ErrTargetNotFound
	case ReasonBackendUnavailable:
		return target == ErrBackendUnavailable
	}
	return false
}

// InvalidTransition is reported when the status guard refuses a change.
type InvalidTransition struct {
	Action      model.ActionKind
	AmbulanceID string
	From        model.Status
	To          model.Status
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("%s %s: cannot move from %s to %s", e.Action, e.AmbulanceID, e.From, e.To)
}

func (e *InvalidTransition) Is(target error) bool { return target == ErrInvalidTransition }

// reasonOf returns a short label for metrics and journal records.
func reasonOf(err error) string {
	var rej *ActionRejected
	var fail *ActionFailed
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rej):
		return string(rej.Reason)
	case errors.As(err, &fail):
		return string(fail.Reason)
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}
