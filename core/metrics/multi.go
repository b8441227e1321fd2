package metrics

// MultiSink fans out records to multiple sinks. Optional recorders are only
// forwarded to sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordActionResult forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordActionResult(res ActionResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordActionResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRejection forwards rejected commands.
func (m *MultiSink) RecordRejection(r Rejection) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			if err := rec.RecordRejection(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSnapshot forwards fleet snapshots.
func (m *MultiSink) RecordFleetSnapshot(ev FleetSnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetSnapshotRecorder); ok {
			if err := rec.RecordFleetSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSimulationTick forwards simulator ticks.
func (m *MultiSink) RecordSimulationTick(t SimulationTick) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SimulationTickRecorder); ok {
			if err := rec.RecordSimulationTick(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNotification forwards notification events.
func (m *MultiSink) RecordNotification(ev NotificationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(NotificationRecorder); ok {
			if err := rec.RecordNotification(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
