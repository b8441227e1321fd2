package fleet

import (
	"fmt"
	"sync"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

// Filter narrows the ambulances returned by Store.Ambulances.
type Filter struct {
	Zone   string
	Status *model.Status
}

func (f Filter) match(a model.Ambulance) bool {
	if f.Zone != "" && a.Zone != f.Zone {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	return true
}

// Store holds the current fleet snapshot. Ambulances keep their seed order.
// Every mutation publishes an events.SnapshotChanged on the bus before the
// write lock is released, so snapshots reach subscribers in mutation order.
type Store struct {
	mu         sync.RWMutex
	ambulances []model.Ambulance
	index      map[string]int
	hospitals  []model.Hospital
	bus        eventbus.EventBus
}

// NewStore creates a store seeded with the given records. Ambulance ids must be unique.
func NewStore(ambulances []model.Ambulance, hospitals []model.Hospital, bus eventbus.EventBus) (*Store, error) {
	if bus == nil {
		bus = eventbus.NopBus{}
	}
	s := &Store{
		ambulances: make([]model.Ambulance, len(ambulances)),
		index:      make(map[string]int, len(ambulances)),
		hospitals:  append([]model.Hospital(nil), hospitals...),
		bus:        bus,
	}
	for i, a := range ambulances {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ambulance id %s", a.ID)
		}
		s.ambulances[i] = a
		s.index[a.ID] = i
	}
	return s, nil
}

// NewSeededStore creates a store with the built-in seed fleet.
func NewSeededStore(bus eventbus.EventBus) *Store {
	s, err := NewStore(model.SeedAmbulances(), model.SeedHospitals(), bus)
	if err != nil {
		panic(err)
	}
	return s
}

// List returns a copy of the current ambulances and hospitals.
func (s *Store) List() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Ambulances: append([]model.Ambulance(nil), s.ambulances...),
		Hospitals:  append([]model.Hospital(nil), s.hospitals...),
	}
}

// Apply returns the ambulances of as matching f, keeping their order. The
// result is never nil.
func (f Filter) Apply(as []model.Ambulance) []model.Ambulance {
	res := make([]model.Ambulance, 0, len(as))
	for _, a := range as {
		if f.match(a) {
			res = append(res, a)
		}
	}
	return res
}

// Ambulances returns the ambulances matching f in seed order.
func (s *Store) Ambulances(f Filter) []model.Ambulance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.ambulances)
}

// Ambulance looks up a single ambulance.
func (s *Store) Ambulance(id string) (model.Ambulance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Ambulance{}, false
	}
	return s.ambulances[i], true
}

// Hospital looks up a single hospital.
func (s *Store) Hospital(id string) (model.Hospital, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return model.Hospital{}, false
}

// UpdateAmbulance applies p to the ambulance with the given id. Unknown ids
// are ignored. It reports whether the ambulance exists.
func (s *Store) UpdateAmbulance(id string, p model.Patch) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	next, changed := p.Apply(s.ambulances[i])
	if !changed {
		s.mu.Unlock()
		return true
	}
	s.ambulances[i] = next
	s.bus.Publish(events.SnapshotChanged{Snapshot: s.snapshotLocked()})
	s.mu.Unlock()
	return true
}

// UpdateAll calls fn for each ambulance and applies the returned patch.
// A single snapshot event is published for the whole batch.
func (s *Store) UpdateAll(fn func(model.Ambulance) model.Patch) {
	s.mu.Lock()
	changed := false
	for i, a := range s.ambulances {
		next, c := fn(a).Apply(a)
		if c {
			s.ambulances[i] = next
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.bus.Publish(events.SnapshotChanged{Snapshot: s.snapshotLocked()})
	s.mu.Unlock()
}
