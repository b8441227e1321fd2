package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

// Order is a crew order emitted when a command completes.
// AmbulanceID is empty for broadcast orders such as emergency alerts.
type Order struct {
	CommandID   string           `json:"command_id"`
	Action      model.ActionKind `json:"action"`
	AmbulanceID string           `json:"ambulance_id,omitempty"`
	Message     string           `json:"message"`
	Time        time.Time        `json:"time"`
}

// OrderPublisher forwards crew orders to the station backend.
type OrderPublisher interface {
	// PublishOrder sends the order. An error means the backend did not accept it.
	PublishOrder(ctx context.Context, o Order) error
}
