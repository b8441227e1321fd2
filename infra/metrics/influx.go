package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/infra/logger"
)

// InfluxSink writes fleet and action events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordActionResult writes a completed command.
func (s *InfluxSink) RecordActionResult(res coremetrics.ActionResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("action_result").
		AddTag("action", string(res.Action)).
		AddTag("outcome", res.Outcome).
		AddTag("component", "dispatch_coordinator")
	if res.AmbulanceID != "" {
		p = p.AddTag("ambulance_id", res.AmbulanceID)
	}
	if res.Reason != "" {
		p = p.AddTag("reason", res.Reason)
	}
	p = p.AddField("action_id", res.ID).
		AddField("latency_ms", round3(res.Latency.Seconds()*1000)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRejection writes a refused command.
func (s *InfluxSink) RecordRejection(r coremetrics.Rejection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("action_rejected").
		AddTag("action", string(r.Action)).
		AddTag("reason", r.Reason).
		AddField("count", 1).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetSnapshot writes one ambulance_state point per ambulance.
func (s *InfluxSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshotEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Snapshot.Ambulances))
	for _, a := range ev.Snapshot.Ambulances {
		p := write.NewPointWithMeasurement("ambulance_state").
			AddTag("ambulance_id", a.ID).
			AddTag("zone", a.Zone).
			AddTag("status", a.Status.String())
		if ev.Component != "" {
			p = p.AddTag("component", ev.Component)
		}
		p = p.AddField("lat", a.Position.Lat).
			AddField("lng", a.Position.Lng).
			AddField("response_minutes", round3(a.ResponseTimeMinutes)).
			SetTime(ev.Time)
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordNotification writes a notification occurrence.
func (s *InfluxSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("notification").
		AddTag("kind", string(ev.Kind)).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
