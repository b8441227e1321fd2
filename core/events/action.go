package events

import (
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

// SlotChanged is emitted when the action slot changes occupancy.
type SlotChanged struct {
	Busy   bool
	Action model.ActionKind
}

// ActionCompleted is emitted once a command has applied its effect.
// Err is nil on success.
type ActionCompleted struct {
	ID          string
	Action      model.ActionKind
	AmbulanceID string
	Started     time.Time
	Finished    time.Time
	Err         error
}

// Outcome returns a short label for metrics and logs.
func (e ActionCompleted) Outcome() string {
	if e.Err != nil {
		return "failed"
	}
	return "success"
}
