// Package infra holds the adapters between the fleet engine and the outside
// world: the zerolog logger, Prometheus and InfluxDB sinks, the Sentry
// monitor, the MQTT crew-order publisher and the crew telemetry feed.
// Adapters implement interfaces declared under core and never import app.
package infra
