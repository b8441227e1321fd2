package metrics

import (
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

// ActionResult represents a completed coordinator command to be recorded.
type ActionResult struct {
	ID          string
	Action      model.ActionKind
	AmbulanceID string
	Outcome     string
	Reason      string
	Latency     time.Duration
	Time        time.Time
}

// MetricsSink records action results for observability purposes.
type MetricsSink interface {
	RecordActionResult(res ActionResult) error
}

// Rejection describes a command refused before its latency phase.
type Rejection struct {
	Action model.ActionKind
	Reason string
	Time   time.Time
}

// RejectionRecorder records refused commands.
type RejectionRecorder interface {
	RecordRejection(r Rejection) error
}

// FleetSnapshotEvent is a snapshot of the whole fleet.
type FleetSnapshotEvent struct {
	Snapshot  model.Snapshot
	Component string
	Time      time.Time
}

// FleetSnapshotRecorder records fleet snapshots.
type FleetSnapshotRecorder interface {
	RecordFleetSnapshot(ev FleetSnapshotEvent) error
}

// SimulationTick captures one run of the position simulator.
type SimulationTick struct {
	Ambulances int
	Duration   time.Duration
	Time       time.Time
}

// SimulationTickRecorder records simulator ticks.
type SimulationTickRecorder interface {
	RecordSimulationTick(t SimulationTick) error
}

// NotificationEvent records a notification shown to the operator.
type NotificationEvent struct {
	Kind model.NotificationKind
	Time time.Time
}

// NotificationRecorder records published notifications.
type NotificationRecorder interface {
	RecordNotification(ev NotificationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordActionResult(ActionResult) error        { return nil }
func (NopSink) RecordRejection(Rejection) error              { return nil }
func (NopSink) RecordFleetSnapshot(FleetSnapshotEvent) error { return nil }
func (NopSink) RecordSimulationTick(SimulationTick) error    { return nil }
func (NopSink) RecordNotification(NotificationEvent) error   { return nil }
