// Package factory builds pluggable modules from configuration. A module is
// declared as a type name plus a map of raw settings, decoded into a typed
// struct by the registered factory.
//
// Metrics sinks are declared this way:
//
//	metrics:
//	  sinks:
//	    - type: influx
//	      conf: {url: "http://influx:8086", token: "t", org: "ops", bucket: "fleet"}
//
// and created with
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) { ... })
//	sink, err := reg.Create(cfg.Metrics.Sinks[0])
package factory
