package config

import "strings"

// TelemetryConfig configures the crew position feed received over MQTT.
type TelemetryConfig struct {
	Enabled bool `json:"enabled"`
	// StatePrefix is the topic prefix; crews publish on <prefix>/<ambulance id>.
	StatePrefix string `json:"state_prefix"`
	QoS         byte   `json:"qos"`
	// AcceptPositions makes crew reports the source of positions and response
	// times. The in-process position simulator is not started in that mode;
	// otherwise those report fields are ignored.
	AcceptPositions bool `json:"accept_positions"`
}

// SetDefaults applies default values.
func (c *TelemetryConfig) SetDefaults() {
	if c.StatePrefix == "" {
		c.StatePrefix = "medfleet/ambulance/state"
	}
}

// Topic returns the wildcard subscription topic.
func (c TelemetryConfig) Topic() string {
	return strings.TrimSuffix(c.StatePrefix, "/") + "/+"
}
