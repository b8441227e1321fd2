package model

import (
	"fmt"
	"strings"
)

// MinResponseTimeMinutes is the floor applied to every simulated response time.
const MinResponseTimeMinutes = 2.0

// Status defines the operational state of an ambulance.
type Status int

const (
	StatusAvailable Status = iota
	StatusOnCall
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusOnCall:
		return "on-call"
	default:
		return "unknown"
	}
}

// ParseStatus converts the textual representation into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return StatusAvailable, nil
	case "on-call", "on_call", "oncall":
		return StatusOnCall, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Position is a WGS84 coordinate pair in degrees.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Ambulance is a vehicle of the simulated fleet.
type Ambulance struct {
	ID                  string   `json:"id" yaml:"id"`
	Position            Position `json:"position" yaml:"position"`
	Status              Status   `json:"status" yaml:"status"`
	Zone                string   `json:"zone" yaml:"zone"`
	Driver              string   `json:"driver" yaml:"driver"`
	VehicleType         string   `json:"vehicle_type" yaml:"vehicle_type"`
	ResponseTimeMinutes float64  `json:"response_time_minutes" yaml:"response_time_minutes"`
}

// Validate checks that the ambulance record is usable by the engine.
func (a Ambulance) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ambulance id is required")
	}
	if a.ResponseTimeMinutes < MinResponseTimeMinutes {
		return fmt.Errorf("ambulance %s: response time %.2f below %.1f", a.ID, a.ResponseTimeMinutes, MinResponseTimeMinutes)
	}
	return nil
}

// Patch is a field-level update of an ambulance. Nil fields are left untouched.
type Patch struct {
	Position            *Position
	Status              *Status
	ResponseTimeMinutes *float64
}

// Apply returns a copy of a with the patch applied and whether anything changed.
func (p Patch) Apply(a Ambulance) (Ambulance, bool) {
	changed := false
	if p.Position != nil && *p.Position != a.Position {
		a.Position = *p.Position
		changed = true
	}
	if p.Status != nil && *p.Status != a.Status {
		a.Status = *p.Status
		changed = true
	}
	if p.ResponseTimeMinutes != nil && *p.ResponseTimeMinutes != a.ResponseTimeMinutes {
		a.ResponseTimeMinutes = *p.ResponseTimeMinutes
		changed = true
	}
	return a, changed
}

// StatusPatch is a helper building a Patch that only changes the status.
func StatusPatch(s Status) Patch { return Patch{Status: &s} }
