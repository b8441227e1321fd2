package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/config"
	coremon "github.com/kilianp07/medfleet/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{}, "dispatch")
	require.NoError(t, err)
	require.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryMonitorTags(t *testing.T) {
	var mu sync.Mutex
	var got []*sentry.Event
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			got = append(got, ev)
			mu.Unlock()
			return nil
		},
	}, "dispatch_coordinator")
	require.NoError(t, err)

	m.CaptureException(errors.New("target not found"), map[string]string{"action": "dispatch", "ambulance_id": "AMB-009", "reason": ""})
	m.CaptureException(nil, nil)
	m.Flush(time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	require.Equal(t, "dispatch_coordinator", got[0].Tags["component"])
	require.Equal(t, "AMB-009", got[0].Tags["ambulance_id"])
	_, hasReason := got[0].Tags["reason"]
	require.False(t, hasReason)
}
