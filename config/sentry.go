package config

// SentryConfig defines settings for Sentry error monitoring.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// SampleRate is the share of error events sent; 0 sends all of them.
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

// Enabled reports whether reporting is configured. An empty DSN disables it.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }
