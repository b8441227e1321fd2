package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/fleet"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/infra/logger"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHubStreamsEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	store := fleet.NewSeededStore(bus)
	hub := NewHub(bus, store, logger.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	f := readFrame(t, conn)
	require.Equal(t, "snapshot", f.Type)
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(f.Data, &snap))
	assert.Len(t, snap.Ambulances, 5)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish(events.SlotChanged{Busy: true, Action: model.ActionDispatch})
	f = readFrame(t, conn)
	require.Equal(t, "slot", f.Type)
	var slot SlotState
	require.NoError(t, json.Unmarshal(f.Data, &slot))
	assert.Equal(t, SlotState{Busy: true, Action: model.ActionDispatch}, slot)

	require.True(t, store.UpdateAmbulance("AMB-001", model.StatusPatch(model.StatusOnCall)))
	f = readFrame(t, conn)
	require.Equal(t, "snapshot", f.Type)
	require.NoError(t, json.Unmarshal(f.Data, &snap))
	a, ok := snap.Ambulance("AMB-001")
	require.True(t, ok)
	assert.Equal(t, model.StatusOnCall, a.Status)
}

func TestHubClosesClientsOnStop(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	hub := NewHub(bus, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Start(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error %v", err)
}

func TestEncode(t *testing.T) {
	start := time.Now()
	msg, ok := Encode(events.ActionCompleted{
		ID: "a1", Action: model.ActionCancel, AmbulanceID: "AMB-002",
		Started: start, Finished: start.Add(1500 * time.Millisecond), Err: errors.New("boom"),
	})
	require.True(t, ok)
	assert.Equal(t, "action", msg.Type)
	st, ok := msg.Data.(ActionState)
	require.True(t, ok)
	assert.Equal(t, "failed", st.Outcome)
	assert.Equal(t, int64(1500), st.LatencyMS)
	assert.Equal(t, "boom", st.Error)

	msg, ok = Encode(events.NotificationChanged{})
	require.True(t, ok)
	assert.Equal(t, "notification", msg.Type)

	_, ok = Encode("unrelated")
	assert.False(t, ok)
}
