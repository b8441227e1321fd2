package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/logger"
	coremetrics "github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

type snapshotSink struct {
	coremetrics.NopSink
	mu   sync.Mutex
	seen []coremetrics.FleetSnapshotEvent
}

func (s *snapshotSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshotEvent) error {
	s.mu.Lock()
	s.seen = append(s.seen, ev)
	s.mu.Unlock()
	return nil
}

func (s *snapshotSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func TestStartEventCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New()
	sink := &snapshotSink{}
	StartEventCollector(ctx, bus, sink, 0, nil)

	bus.Publish(events.SlotChanged{Busy: true, Action: model.ActionRequest})
	bus.Publish(events.SnapshotChanged{Snapshot: model.Snapshot{Ambulances: model.SeedAmbulances()}})
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	sink.mu.Lock()
	require.Equal(t, "fleet_store", sink.seen[0].Component)
	require.Len(t, sink.seen[0].Snapshot.Ambulances, 5)
	sink.mu.Unlock()
}

func TestStartEventCollector_Throttles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New()
	sink := &snapshotSink{}
	StartEventCollector(ctx, bus, sink, time.Hour, nil)

	for i := 0; i < 3; i++ {
		bus.Publish(events.SnapshotChanged{})
	}
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, sink.count())
}

type actionOnlySink struct{}

func (actionOnlySink) RecordActionResult(coremetrics.ActionResult) error { return nil }

func TestStartEventCollector_IgnoresSinkWithoutRecorder(t *testing.T) {
	bus := eventbus.New()
	StartEventCollector(context.Background(), bus, actionOnlySink{}, 0, nil)
	bus.Publish(events.SnapshotChanged{})
}

type failingSnapshotSink struct{ coremetrics.NopSink }

func (failingSnapshotSink) RecordFleetSnapshot(coremetrics.FleetSnapshotEvent) error {
	return errors.New("write refused")
}

type errLogger struct {
	logger.NopLogger
	mu   sync.Mutex
	errs []string
}

func (l *errLogger) Errorf(format string, args ...any) {
	l.mu.Lock()
	l.errs = append(l.errs, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *errLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errs)
}

func TestStartEventCollector_LogsSinkError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New()
	log := &errLogger{}
	StartEventCollector(ctx, bus, failingSnapshotSink{}, 0, log)

	bus.Publish(events.SnapshotChanged{})
	require.Eventually(t, func() bool { return log.count() == 1 }, time.Second, 5*time.Millisecond)
	log.mu.Lock()
	require.Contains(t, log.errs[0], "write refused")
	log.mu.Unlock()
}
