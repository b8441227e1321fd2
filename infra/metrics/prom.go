package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
)

// PromSink records fleet and action events in Prometheus metrics.
type PromSink struct {
	results       *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	ambulances    *prometheus.GaugeVec
	responseTime  prometheus.Gauge
	ticks         prometheus.Counter
	notifications *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "action_results_total",
			Help: "Completed commands by action, outcome and failure reason",
		}, []string{"action", "outcome", "reason"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "action_rejected_total",
			Help: "Commands refused before starting",
		}, []string{"action", "reason"}),
		ambulances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_ambulances",
			Help: "Number of ambulances by status",
		}, []string{"status"}),
		responseTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_avg_response_minutes",
			Help: "Average estimated response time across the fleet",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulator_ticks_total",
			Help: "Number of position simulator ticks",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications shown to the operator by kind",
		}, []string{"kind"}),
	}
	var err error
	if s.results, err = register(reg, s.results); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, s.rejections); err != nil {
		return nil, err
	}
	if s.ambulances, err = register(reg, s.ambulances); err != nil {
		return nil, err
	}
	if s.responseTime, err = register(reg, s.responseTime); err != nil {
		return nil, err
	}
	if s.ticks, err = register(reg, s.ticks); err != nil {
		return nil, err
	}
	if s.notifications, err = register(reg, s.notifications); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordActionResult increments the result counter.
func (s *PromSink) RecordActionResult(res coremetrics.ActionResult) error {
	s.results.WithLabelValues(string(res.Action), res.Outcome, res.Reason).Inc()
	return nil
}

// RecordRejection increments the rejection counter.
func (s *PromSink) RecordRejection(r coremetrics.Rejection) error {
	s.rejections.WithLabelValues(string(r.Action), r.Reason).Inc()
	return nil
}

// RecordFleetSnapshot updates the status gauges and average response time.
func (s *PromSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshotEvent) error {
	counts := map[model.Status]int{model.StatusAvailable: 0, model.StatusOnCall: 0}
	total := 0.0
	for _, a := range ev.Snapshot.Ambulances {
		counts[a.Status]++
		total += a.ResponseTimeMinutes
	}
	for st, n := range counts {
		s.ambulances.WithLabelValues(st.String()).Set(float64(n))
	}
	if n := len(ev.Snapshot.Ambulances); n > 0 {
		s.responseTime.Set(total / float64(n))
	}
	return nil
}

// RecordSimulationTick counts simulator ticks.
func (s *PromSink) RecordSimulationTick(coremetrics.SimulationTick) error {
	s.ticks.Inc()
	return nil
}

// RecordNotification counts notifications by kind.
func (s *PromSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	s.notifications.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}
