// Package metrics defines interfaces for collecting fleet and action metrics.
// Sinks like PromSink and InfluxSink record command outcomes, rejections,
// simulator ticks and fleet snapshots and can be combined with NewMultiSink.
// The factory helpers return a MultiSink automatically when multiple sinks
// are configured.
package metrics
