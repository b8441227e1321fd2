package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/logger"
	coremetrics "github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records fleet snapshots.
// Snapshots arriving less than minInterval after the last recorded one are
// skipped. Sink errors are reported on log, which may be nil. It stops when
// the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, minInterval time.Duration, log logger.Logger) {
	if bus == nil || sink == nil {
		return
	}
	log = logger.OrNop(log)
	rec, ok := sink.(coremetrics.FleetSnapshotRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		var last time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, isSnap := ev.(events.SnapshotChanged)
				if !isSnap {
					continue
				}
				now := time.Now()
				if minInterval > 0 && now.Sub(last) < minInterval {
					continue
				}
				last = now
				if err := rec.RecordFleetSnapshot(coremetrics.FleetSnapshotEvent{Snapshot: e.Snapshot, Component: "fleet_store", Time: now}); err != nil {
					log.Errorf("fleet snapshot metrics error: %v", err)
				}
			}
		}
	}()
}
