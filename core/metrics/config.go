package metrics

import (
	"time"

	"github.com/kilianp07/medfleet/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusAddr string                 `json:"prometheus_addr"`
	// SnapshotIntervalMS is the period of fleet snapshot recording; 0 means 1s.
	SnapshotIntervalMS int `json:"snapshot_interval_ms"`
}

// SnapshotInterval returns the fleet snapshot recording period.
func (c Config) SnapshotInterval() time.Duration {
	if c.SnapshotIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.SnapshotIntervalMS) * time.Millisecond
}
