package mqtt

import (
	"context"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
)

// OrderPublisher mirrors the core mqtt.OrderPublisher interface.
type OrderPublisher = coremqtt.OrderPublisher

// MockPublisher records orders in memory. It is used in tests and when no
// broker is configured.
type MockPublisher struct {
	FailIDs map[string]bool
	Fail    bool

	mu     sync.Mutex
	orders []coremqtt.Order
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailIDs: make(map[string]bool)}
}

// PublishOrder records the order or returns an error if configured to fail.
func (m *MockPublisher) PublishOrder(_ context.Context, o coremqtt.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail || m.FailIDs[o.AmbulanceID] {
		return fmt.Errorf("publish failed")
	}
	m.orders = append(m.orders, o)
	return nil
}

// Orders returns a copy of the recorded orders.
func (m *MockPublisher) Orders() []coremqtt.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.Order(nil), m.orders...)
}
