package crewsim

import (
	"fmt"
	"time"
)

// Config holds parameters for the crew simulator.
type Config struct {
	Broker string
	// OrderPrefix is the topic prefix used by the dispatch service for crew orders.
	OrderPrefix string
	// StatePrefix is the topic prefix crews report on.
	StatePrefix string
	// Interval between periodic reports.
	Interval time.Duration
	// ReportLatency delays the report sent after an order.
	ReportLatency time.Duration
	// DropRate is the probability that an order is ignored.
	DropRate  float64
	JitterDeg float64
	Seed      int64
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.OrderPrefix == "" {
		c.OrderPrefix = "medfleet"
	}
	if c.StatePrefix == "" {
		c.StatePrefix = "medfleet/ambulance/state"
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.JitterDeg == 0 {
		c.JitterDeg = 0.0005
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop rate must be within [0,1]")
	}
	if c.ReportLatency < 0 {
		return fmt.Errorf("report latency must not be negative")
	}
	return nil
}
