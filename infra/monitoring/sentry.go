package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/medfleet/config"
	coremon "github.com/kilianp07/medfleet/core/monitoring"
)

// NewSentryMonitor returns a Monitor reporting to Sentry, or a NopMonitor when
// no DSN is configured. Every event carries the component tag.
func NewSentryMonitor(cfg config.SentryConfig, component string) (coremon.Monitor, error) {
	if !cfg.Enabled() {
		return coremon.NopMonitor{}, nil
	}
	return newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       cfg.SampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
	}, component)
}

func newSentryMonitor(opts sentry.ClientOptions, component string) (*SentryMonitor, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	if component != "" {
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("component", component)
		})
	}
	return &SentryMonitor{hub: hub}, nil
}

// SentryMonitor reports errors through its own hub so that several
// components can report with distinct tags.
type SentryMonitor struct {
	hub *sentry.Hub
}

func (s *SentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			if v != "" {
				scope.SetTag(k, v)
			}
		}
		s.hub.CaptureException(err)
	})
}

func (s *SentryMonitor) Recover() {
	if r := recover(); r != nil {
		s.hub.Recover(r)
		s.hub.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *SentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
