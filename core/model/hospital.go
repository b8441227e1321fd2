package model

// Hospital is immutable reference data shown next to the fleet.
type Hospital struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Position         Position `json:"position" yaml:"position"`
	BedCapacity      int      `json:"bed_capacity" yaml:"bed_capacity"`
	EmergencyCapable bool     `json:"emergency_capable" yaml:"emergency_capable"`
}
