package dispatch

import (
	"fmt"
	"time"
)

// Config defines coordinator settings.
type Config struct {
	// LatencyMS is the simulated backend latency applied to every command.
	// Zero or negative values select the 1500 ms default.
	LatencyMS int `json:"latency_ms"`
	// PermissiveTransitions disables the status guard on dispatch and cancel.
	PermissiveTransitions bool `json:"permissive_transitions"`
	// HospitalCallMS is the lifetime of the hospital call notification.
	HospitalCallMS int `json:"hospital_call_ms"`
	// RouteSavingsPct is the saving announced by route optimization.
	RouteSavingsPct int `json:"route_savings_pct"`
	// OrderTimeoutMS bounds a crew order publish.
	OrderTimeoutMS int `json:"order_timeout_ms"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.LatencyMS <= 0 {
		c.LatencyMS = 1500
	}
	if c.HospitalCallMS <= 0 {
		c.HospitalCallMS = 2000
	}
	if c.RouteSavingsPct <= 0 {
		c.RouteSavingsPct = 23
	}
	if c.OrderTimeoutMS <= 0 {
		c.OrderTimeoutMS = 2000
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.RouteSavingsPct > 100 {
		return fmt.Errorf("route_savings_pct must be <= 100")
	}
	return nil
}

func (c Config) latency() time.Duration { return time.Duration(c.LatencyMS) * time.Millisecond }

func (c Config) hospitalCall() time.Duration {
	return time.Duration(c.HospitalCallMS) * time.Millisecond
}

// OrderTimeout bounds the publication of one crew order.
func (c Config) OrderTimeout() time.Duration {
	return time.Duration(c.OrderTimeoutMS) * time.Millisecond
}
