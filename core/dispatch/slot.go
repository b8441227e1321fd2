package dispatch

import (
	"sync"

	"github.com/kilianp07/medfleet/core/model"
)

// Slot admits at most one command at a time.
type Slot struct {
	mu     sync.Mutex
	action model.ActionKind
}

// TryAcquire claims the slot for action. When the slot is held it returns
// false together with the action in flight.
func (s *Slot) TryAcquire(action model.ActionKind) (model.ActionKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.action != model.ActionNone {
		return s.action, false
	}
	s.action = action
	return action, true
}

// Release frees the slot. Releasing an idle slot is a no-op.
func (s *Slot) Release() {
	s.mu.Lock()
	s.action = model.ActionNone
	s.mu.Unlock()
}

// Current returns the action holding the slot.
func (s *Slot) Current() (model.ActionKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action, s.action != model.ActionNone
}
