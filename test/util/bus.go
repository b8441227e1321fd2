package util

import (
	"sync"

	"github.com/kilianp07/medfleet/internal/eventbus"
)

// GateBus records published events in delivery order. The first event
// accepted by Hold blocks its publisher until Open is called, which lets a
// test run another goroutine while a publish is in progress.
type GateBus struct {
	eventbus.NopBus

	// Hold selects the event to block on. A nil Hold never blocks.
	Hold func(eventbus.Event) bool

	mu      sync.Mutex
	events  []eventbus.Event
	held    bool
	entered chan struct{}
	release chan struct{}
}

// NewGateBus creates a GateBus blocking on the first event matching hold.
func NewGateBus(hold func(eventbus.Event) bool) *GateBus {
	return &GateBus{Hold: hold, entered: make(chan struct{}), release: make(chan struct{})}
}

// Publish records e, blocking first if e is the held event.
func (b *GateBus) Publish(e eventbus.Event) {
	b.mu.Lock()
	hit := !b.held && b.Hold != nil && b.Hold(e)
	if hit {
		b.held = true
	}
	b.mu.Unlock()
	if hit {
		close(b.entered)
		<-b.release
	}
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

// Entered is closed once a publisher is blocked on the held event.
func (b *GateBus) Entered() <-chan struct{} { return b.entered }

// Open releases the blocked publisher. It must be called exactly once.
func (b *GateBus) Open() { close(b.release) }

// Events returns a copy of the recorded events.
func (b *GateBus) Events() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]eventbus.Event(nil), b.events...)
}
