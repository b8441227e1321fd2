// Package events defines the fleet related events emitted on the event bus.
//
// Available event types:
//   - SnapshotChanged: the entity store published a new snapshot
//   - NotificationChanged: the notification queue was replaced or cleared
//   - SlotChanged: the action slot was acquired or released
//   - ActionCompleted: a command finished its latency phase
package events
