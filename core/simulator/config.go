package simulator

import (
	"fmt"
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

// Bounds is a latitude/longitude box. The zero value disables clamping.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Enabled reports whether the box is set.
func (b Bounds) Enabled() bool { return b != Bounds{} }

// Clamp keeps p inside the box.
func (b Bounds) Clamp(p model.Position) model.Position {
	if !b.Enabled() {
		return p
	}
	p.Lat = clamp(p.Lat, b.MinLat, b.MaxLat)
	p.Lng = clamp(p.Lng, b.MinLng, b.MaxLng)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Config holds parameters for the position simulator.
type Config struct {
	IntervalMS         int     `json:"interval_ms"`
	PositionJitterDeg  float64 `json:"position_jitter_deg"`
	ResponseJitterMin  float64 `json:"response_jitter_minutes"`
	MinResponseMinutes float64 `json:"min_response_minutes"`
	Seed               int64   `json:"seed"`
	Bounds             Bounds  `json:"bounds"`
}

// DefaultBounds surrounds the seeded Manhattan cluster with a small margin.
var DefaultBounds = Bounds{MinLat: 40.70, MaxLat: 40.78, MinLng: -74.02, MaxLng: -73.95}

// SetDefaults applies the reference values for unset fields.
func (c *Config) SetDefaults() {
	if c.IntervalMS <= 0 {
		c.IntervalMS = 3000
	}
	if c.PositionJitterDeg == 0 {
		c.PositionJitterDeg = 0.0005
	}
	if c.ResponseJitterMin == 0 {
		c.ResponseJitterMin = 0.25
	}
	if c.MinResponseMinutes == 0 {
		c.MinResponseMinutes = model.MinResponseTimeMinutes
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.PositionJitterDeg < 0 || c.ResponseJitterMin < 0 {
		return fmt.Errorf("jitter must not be negative")
	}
	if c.MinResponseMinutes < model.MinResponseTimeMinutes {
		return fmt.Errorf("min_response_minutes must be >= %.1f", model.MinResponseTimeMinutes)
	}
	if b := c.Bounds; b.Enabled() && (b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng) {
		return fmt.Errorf("invalid bounds %+v", b)
	}
	return nil
}

// Interval returns the tick period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}
