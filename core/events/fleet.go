package events

import "github.com/kilianp07/medfleet/core/model"

// SnapshotChanged is published after every store mutation.
type SnapshotChanged struct {
	Snapshot model.Snapshot
}

// NotificationChanged is published when a notification is shown or cleared.
// Notification is nil once the queue is empty.
type NotificationChanged struct {
	Notification *model.Notification
}
