package metrics_test

import (
	"testing"

	"github.com/kilianp07/medfleet/core/factory"
	metrics "github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
	_ "github.com/kilianp07/medfleet/infra/metrics"
)

/*
TestMetricsFactory_Builtins verifies registration via infra/metrics/factory.go.

	Cases:
	- builtin sink types are listed
	- instantiate builtin nop sink
	- unknown type returns error
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	names := map[string]bool{}
	for _, n := range metrics.RegisteredSinks() {
		names[n] = true
	}
	for _, want := range []string{"nop", "prometheus", "influx"} {
		if !names[want] {
			t.Fatalf("sink %q not registered", want)
		}
	}
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}
	s, err = metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
}

type closingSink struct {
	results  int
	rejected int
	closed   bool
}

func (c *closingSink) RecordActionResult(metrics.ActionResult) error { c.results++; return nil }
func (c *closingSink) RecordRejection(metrics.Rejection) error       { c.rejected++; return nil }
func (c *closingSink) Close()                                        { c.closed = true }

type resultOnly struct{ results int }

func (r *resultOnly) RecordActionResult(metrics.ActionResult) error { r.results++; return nil }

func TestMultiSinkFanOut(t *testing.T) {
	a := &closingSink{}
	b := &resultOnly{}
	m := metrics.NewMultiSink(a, b)

	if err := m.RecordActionResult(metrics.ActionResult{Action: model.ActionDispatch, Outcome: "success"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := m.RecordRejection(metrics.Rejection{Action: model.ActionDispatch, Reason: "slot_busy"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	m.Close()

	if a.results != 1 || b.results != 1 {
		t.Fatalf("results not fanned out: %d %d", a.results, b.results)
	}
	if a.rejected != 1 {
		t.Fatalf("rejection not forwarded")
	}
	if !a.closed {
		t.Fatalf("closable sink not closed")
	}
}
