package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/medfleet/core/factory"
	coremetrics "github.com/kilianp07/medfleet/core/metrics"
)

// influxConf is the raw configuration of the "influx" sink. With Strict set a
// failed health check aborts startup instead of falling back to a no-op sink.
type influxConf struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	Strict bool   `json:"strict"`
}

func (c influxConf) validate() error {
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx sink requires url, org and bucket")
	}
	return nil
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c influxConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if !c.Strict {
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	}
	sink := NewInfluxSink(c.URL, c.Token, c.Org, c.Bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h, err := sink.client.Health(ctx)
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("influx health: %w", err)
	}
	if h.Status != "pass" {
		sink.Close()
		return nil, fmt.Errorf("influx health status %s", h.Status)
	}
	return sink, nil
}

// init registers the built-in sinks: nop, prometheus and influx.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
	_ = coremetrics.RegisterMetricsSink("influx", newInfluxFromConf)
}
