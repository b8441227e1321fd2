package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	actionLatency   *prometheus.HistogramVec
	actionsTotal    *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	slotBusy        prometheus.Gauge
	ordersPublished *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, *prometheus.CounterVec) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "action_latency_seconds",
			Help:    "Time from slot acquisition to command completion",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actions_total",
			Help: "Number of completed commands by outcome",
		},
		[]string{"action", "outcome"},
	)
	rej := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "action_rejections_total",
			Help: "Number of commands refused before starting",
		},
		[]string{"action", "reason"},
	)
	busy := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "action_slot_busy",
			Help: "1 while a command holds the action slot",
		},
	)
	orders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crew_orders_published_total",
			Help: "Number of crew orders sent to the backend by outcome",
		},
		[]string{"outcome"},
	)
	return lat, total, rej, busy, orders
}

func init() {
	actionLatency, actionsTotal, rejectionsTotal, slotBusy, ordersPublished = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers coordinator metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(actionLatency, actionsTotal, rejectionsTotal, slotBusy, ordersPublished)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	actionLatency, actionsTotal, rejectionsTotal, slotBusy, ordersPublished = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
