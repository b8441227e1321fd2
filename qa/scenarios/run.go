package scenarios

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/kilianp07/medfleet/core/dispatch"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/core/notify"
	"github.com/kilianp07/medfleet/core/selection"
	"github.com/kilianp07/medfleet/infra/logger"
	"github.com/kilianp07/medfleet/infra/metrics"
	"github.com/kilianp07/medfleet/infra/mqtt"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailAmbulances {
		pub.FailIDs[id] = true
	}

	bus := eventbus.New()
	defer bus.Close()
	store := fleet.NewSeededStore(bus)
	sel := selection.New()
	queue := notify.NewQueue(notify.Config{}, bus, sink)
	defer queue.Close()

	latency := sc.LatencyMS
	if latency <= 0 {
		latency = 20
	}
	coord, err := dispatch.NewCoordinator(dispatch.Config{LatencyMS: latency, PermissiveTransitions: sc.Permissive},
		store, sel, queue, bus, logger.NopLogger{}, sink)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	coord.SetPublisher(pub)
	defer func() { _ = coord.Close() }()

	for i, st := range sc.Steps {
		switch {
		case st.Select != "":
			sel.Select(st.Select)
		case st.Clear:
			sel.Clear()
		case st.Action != "":
			kind, ok := model.ParseActionKind(st.Action)
			if !ok {
				t.Fatalf("step %d: unknown action %q", i, st.Action)
			}
			_, err := coord.Submit(kind, st.Target)
			checkReject(t, i, st.Reject, err)
		case st.Call != "":
			if _, err := coord.CallHospital(st.Call); err != nil && st.Reject == "" {
				t.Errorf("step %d: call %s: %v", i, st.Call, err)
			}
		case st.Wait:
			coord.Wait()
		case st.Dismiss:
			queue.Dismiss()
		case st.Expect != nil:
			checkExpect(t, i, st.Expect, store, queue, coord)
		default:
			t.Fatalf("step %d: empty step", i)
		}
	}
	coord.Wait()

	if got := sum(t, reg, "action_rejected_total", nil); got != sc.Expected.Rejections {
		t.Errorf("scenario %s expected %d rejections, got %d", sc.Name, sc.Expected.Rejections, got)
	}
	if got := sum(t, reg, "action_results_total", map[string]string{"outcome": "failed"}); got != sc.Expected.Failures {
		t.Errorf("scenario %s expected %d failures, got %d", sc.Name, sc.Expected.Failures, got)
	}
	if got := len(pub.Orders()); got != sc.Expected.Orders {
		t.Errorf("scenario %s expected %d orders, got %d", sc.Name, sc.Expected.Orders, got)
	}
}

func checkReject(t *testing.T, step int, want string, err error) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Errorf("step %d: unexpected error %v", step, err)
		}
		return
	}
	var rej *dispatch.ActionRejected
	if !errors.As(err, &rej) {
		t.Errorf("step %d: expected rejection %s, got %v", step, want, err)
		return
	}
	if string(rej.Reason) != want {
		t.Errorf("step %d: expected rejection %s, got %s", step, want, rej.Reason)
	}
}

func checkExpect(t *testing.T, step int, e *Expect, store *fleet.Store, queue *notify.Queue, coord *dispatch.Coordinator) {
	t.Helper()
	for id, want := range e.Status {
		a, ok := store.Ambulance(id)
		if !ok {
			t.Errorf("step %d: ambulance %s not found", step, id)
			continue
		}
		if a.Status.String() != want {
			t.Errorf("step %d: %s status %s, want %s", step, id, a.Status, want)
		}
	}
	if e.Notification != nil {
		n, ok := queue.Current()
		switch {
		case *e.Notification == "" && ok:
			t.Errorf("step %d: unexpected notification %q", step, n.Message)
		case *e.Notification != "" && !ok:
			t.Errorf("step %d: expected notification %q, got none", step, *e.Notification)
		case ok && n.Message != *e.Notification:
			t.Errorf("step %d: notification %q, want %q", step, n.Message, *e.Notification)
		case ok && e.Kind != "" && string(n.Kind) != e.Kind:
			t.Errorf("step %d: notification kind %s, want %s", step, n.Kind, e.Kind)
		}
	}
	if e.Busy != nil {
		if _, busy := coord.Busy(); busy != *e.Busy {
			t.Errorf("step %d: busy %v, want %v", step, busy, *e.Busy)
		}
	}
}

// sum adds the values of the counter family name whose labels match.
func sum(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) int {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return int(total)
}

func matches(m *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lp := range m.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
