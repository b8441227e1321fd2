package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/medfleet/config"
	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/model"
	infralogger "github.com/kilianp07/medfleet/infra/logger"
	infmqtt "github.com/kilianp07/medfleet/infra/mqtt"
)

// ErrUnknownAmbulance is returned for reports about ambulances not in the store.
var ErrUnknownAmbulance = errors.New("unknown ambulance")

// Fleet is the part of the entity store updated by crew reports.
type Fleet interface {
	Ambulance(id string) (model.Ambulance, bool)
	UpdateAmbulance(id string, p model.Patch) bool
}

type subscriber interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// Manager applies reports pushed by ambulance crews.
//
// Positions and response times are taken from reports only when
// AcceptPositions is set. A status carrying a command id acknowledges a
// crew order and never overrides the store. A status without one is a
// crew-initiated change; it is applied and journaled.
type Manager struct {
	cfg   config.TelemetryConfig
	cli   subscriber
	fleet Fleet
	log   logger.Logger

	mu      sync.Mutex
	journal logging.LogStore
}

// NewManager connects to MQTT with a dedicated client id.
func NewManager(mqttCfg infmqtt.Config, cfg config.TelemetryConfig, fleet Fleet) (*Manager, error) {
	cfg.SetDefaults()
	opts, err := infmqtt.NewClientOptions(mqttCfg)
	if err != nil {
		return nil, err
	}
	id := mqttCfg.ClientID
	if id != "" {
		id += "-telemetry"
	} else {
		id = "telemetry-" + uuid.NewString()
	}
	opts.SetClientID(id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return newManager(cli, cfg, fleet, infralogger.New("telemetry")), nil
}

func newManager(cli subscriber, cfg config.TelemetryConfig, fleet Fleet, log logger.Logger) *Manager {
	cfg.SetDefaults()
	return &Manager{cfg: cfg, cli: cli, fleet: fleet, log: logger.OrNop(log)}
}

// SetLogStore configures the journal receiving crew-initiated status changes.
func (m *Manager) SetLogStore(store logging.LogStore) {
	m.mu.Lock()
	m.journal = store
	m.mu.Unlock()
}

// Start subscribes to crew reports and blocks until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	topic := m.cfg.Topic()
	if token := m.cli.Subscribe(topic, m.cfg.QoS, m.onPush); token.Wait() && token.Error() != nil {
		m.log.Errorf("subscribe state: %v", token.Error())
	} else {
		m.log.Infof("listening for crew reports on %s", topic)
	}
	<-ctx.Done()
	if m.cli.IsConnected() {
		m.cli.Disconnect(250)
	}
}

func (m *Manager) onPush(_ paho.Client, msg paho.Message) {
	start := time.Now()
	res, err := m.process(msg.Payload(), msg.Topic())
	if err != nil {
		reportsTotal.WithLabelValues("rejected").Inc()
		m.log.Warnf("crew report on %s: %v", msg.Topic(), err)
		return
	}
	reportsTotal.WithLabelValues(res).Inc()
	applyLatency.Observe(time.Since(start).Seconds())
	lastReport.SetToCurrentTime()
}

func extractID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

// report is the crew payload. Absent fields are left unchanged.
type report struct {
	AmbulanceID     string   `json:"ambulance_id"`
	CommandID       string   `json:"command_id"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Status          *string  `json:"status"`
	ResponseMinutes *float64 `json:"response_minutes"`
}

// Report outcomes counted by telemetry_reports_total.
const (
	resultApplied = "applied"
	resultIgnored = "ignored"
)

// process applies one report and returns its outcome label.
func (m *Manager) process(payload []byte, topic string) (string, error) {
	var r report
	if err := json.Unmarshal(payload, &r); err != nil {
		return "", err
	}
	if r.AmbulanceID == "" {
		r.AmbulanceID = extractID(topic)
	}
	p, err := r.patch()
	if err != nil {
		return "", err
	}
	cur, ok := m.fleet.Ambulance(r.AmbulanceID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAmbulance, r.AmbulanceID)
	}

	ignored := false
	if !m.cfg.AcceptPositions && (p.Position != nil || p.ResponseTimeMinutes != nil) {
		p.Position, p.ResponseTimeMinutes = nil, nil
		ignored = true
	}
	crewChange := false
	if p.Status != nil && *p.Status != cur.Status {
		if r.CommandID != "" {
			m.log.Debugf("%s: stale acknowledgement of %s ignored (status %s, reported %s)", r.AmbulanceID, r.CommandID, cur.Status, *p.Status)
			p.Status = nil
			ignored = true
		} else {
			crewChange = true
		}
	}
	if p == (model.Patch{}) {
		if ignored {
			return resultIgnored, nil
		}
		return resultApplied, nil
	}
	if !m.fleet.UpdateAmbulance(r.AmbulanceID, p) {
		return "", fmt.Errorf("%w: %s", ErrUnknownAmbulance, r.AmbulanceID)
	}
	if crewChange {
		m.journalStatus(r.AmbulanceID, cur.Status, *p.Status)
	}
	return resultApplied, nil
}

func (m *Manager) journalStatus(id string, from, to model.Status) {
	m.log.Infof("%s: crew reported %s (was %s)", id, to, from)
	m.mu.Lock()
	store := m.journal
	m.mu.Unlock()
	if store == nil {
		return
	}
	rec := logging.LogRecord{
		Timestamp:   time.Now(),
		ActionID:    uuid.NewString(),
		Action:      model.ActionCrewReport,
		AmbulanceID: id,
		Outcome:     "success",
	}
	if err := store.Append(context.Background(), rec); err != nil {
		m.log.Errorf("crew report journal error: %v", err)
	}
}

func (r report) patch() (model.Patch, error) {
	var p model.Patch
	if (r.Lat == nil) != (r.Lng == nil) {
		return p, fmt.Errorf("lat and lng must be reported together")
	}
	if r.Lat != nil {
		if *r.Lat < -90 || *r.Lat > 90 || *r.Lng < -180 || *r.Lng > 180 {
			return p, fmt.Errorf("position out of range")
		}
		p.Position = &model.Position{Lat: *r.Lat, Lng: *r.Lng}
	}
	if r.Status != nil {
		st, err := model.ParseStatus(*r.Status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if r.ResponseMinutes != nil {
		rt := *r.ResponseMinutes
		if rt < model.MinResponseTimeMinutes {
			rt = model.MinResponseTimeMinutes
		}
		p.ResponseTimeMinutes = &rt
	}
	return p, nil
}

var (
	reportsTotal *prometheus.CounterVec
	applyLatency prometheus.Histogram
	lastReport   prometheus.Gauge
)

func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "telemetry_reports_total", Help: "Crew reports received by result"}, []string{"result"})
	lat := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "telemetry_apply_latency_seconds", Help: "Time to apply a crew report", Buckets: prometheus.DefBuckets})
	last := prometheus.NewGauge(prometheus.GaugeOpts{Name: "telemetry_last_report_timestamp_seconds", Help: "Unix timestamp of the last applied crew report"})
	return total, lat, last
}

func init() {
	reportsTotal, applyLatency, lastReport = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers telemetry metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(reportsTotal, applyLatency, lastReport)
}

// ResetMetrics reinitializes metrics collectors for testing purposes.
func ResetMetrics(reg prometheus.Registerer) {
	reportsTotal, applyLatency, lastReport = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
