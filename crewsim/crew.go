// Package crewsim simulates ambulance crews on MQTT. Crews follow the orders
// published by the dispatch service, acknowledge them with their new status
// and periodically report their GPS position on the telemetry feed.
package crewsim

import (
	"math/rand"
	"sync"

	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
	"github.com/kilianp07/medfleet/core/model"
)

// Report is the crew payload consumed by the telemetry feed. A report carries
// either a position or an order acknowledgement.
type Report struct {
	AmbulanceID string   `json:"ambulance_id"`
	CommandID   string   `json:"command_id,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// Crew is the simulated state of one ambulance.
type Crew struct {
	ID string

	mu       sync.Mutex
	position model.Position
	status   model.Status
}

// NewCrew creates a crew starting from the ambulance record.
func NewCrew(a model.Ambulance) *Crew {
	return &Crew{ID: a.ID, position: a.Position, status: a.Status}
}

// FromAmbulances creates one crew per ambulance.
func FromAmbulances(as []model.Ambulance) []*Crew {
	crews := make([]*Crew, len(as))
	for i, a := range as {
		crews[i] = NewCrew(a)
	}
	return crews
}

// HandleOrder applies an order addressed to the crew and reports whether the
// status changed. Broadcast orders and unrelated actions leave it untouched.
func (c *Crew) HandleOrder(o coremqtt.Order) bool {
	if o.AmbulanceID != c.ID {
		return false
	}
	var next model.Status
	switch o.Action {
	case model.ActionDispatch:
		next = model.StatusOnCall
	case model.ActionCancel:
		next = model.StatusAvailable
	default:
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == next {
		return false
	}
	c.status = next
	return true
}

// Step moves the crew by at most jitter degrees per axis.
func (c *Crew) Step(rng *rand.Rand, jitter float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position.Lat += (rng.Float64()*2 - 1) * jitter
	c.position.Lng += (rng.Float64()*2 - 1) * jitter
}

// Status returns the status the crew believes it has.
func (c *Crew) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// PositionReport returns the periodic GPS report.
func (c *Crew) PositionReport() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	lat, lng := c.position.Lat, c.position.Lng
	return Report{AmbulanceID: c.ID, Lat: &lat, Lng: &lng}
}

// Ack returns the acknowledgement of order o with the crew's current status.
func (c *Crew) Ack(o coremqtt.Order) Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Report{AmbulanceID: c.ID, CommandID: o.CommandID, Status: c.status.String()}
}
