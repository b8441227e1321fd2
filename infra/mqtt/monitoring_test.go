package mqtt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kilianp07/medfleet/core/model"
	coremqtt "github.com/kilianp07/medfleet/core/mqtt"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishOrderErrorCaptured(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}}
	withMockClient(t, mc)
	mon := &recordMonitor{}
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	cli.SetMonitor(mon)
	err = cli.PublishOrder(context.Background(), coremqtt.Order{AmbulanceID: "AMB-001", Action: model.ActionDispatch})
	if err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["ambulance_id"] != "AMB-001" || mon.tags["module"] != "mqtt" {
		t.Fatalf("tags not set")
	}
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	m.FailIDs["AMB-002"] = true
	if err := m.PublishOrder(context.Background(), coremqtt.Order{AmbulanceID: "AMB-001"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := m.PublishOrder(context.Background(), coremqtt.Order{AmbulanceID: "AMB-002"}); err == nil {
		t.Fatalf("expected failure")
	}
	if got := len(m.Orders()); got != 1 {
		t.Fatalf("expected 1 order, got %d", got)
	}
}
