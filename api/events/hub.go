// Package events streams fleet events to websocket clients.
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message is the JSON frame sent to clients.
type Message struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// SlotState is the payload of "slot" messages.
type SlotState struct {
	Busy   bool             `json:"busy"`
	Action model.ActionKind `json:"action,omitempty"`
}

// ActionState is the payload of "action" messages.
type ActionState struct {
	ID          string           `json:"id"`
	Action      model.ActionKind `json:"action"`
	AmbulanceID string           `json:"ambulance_id,omitempty"`
	Outcome     string           `json:"outcome"`
	Error       string           `json:"error,omitempty"`
	LatencyMS   int64            `json:"latency_ms"`
}

// Snapshotter provides the snapshot sent when a client connects.
type Snapshotter interface {
	List() model.Snapshot
}

// Hub fans bus events out to websocket subscribers.
type Hub struct {
	bus      eventbus.EventBus
	store    Snapshotter
	log      logger.Logger
	out      *eventbus.TypedBus[Message]
	upgrader websocket.Upgrader
}

// NewHub creates a hub reading from bus. store may be nil.
func NewHub(bus eventbus.EventBus, store Snapshotter, log logger.Logger) *Hub {
	if bus == nil {
		bus = eventbus.NopBus{}
	}
	return &Hub{
		bus:   bus,
		store: store,
		log:   logger.OrNop(log),
		out:   eventbus.NewTypedWithBuffer[Message](64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start subscribes to the bus and forwards events until ctx is done.
// Connected clients are disconnected once the hub stops.
func (h *Hub) Start(ctx context.Context) {
	ch := h.bus.Subscribe()
	go func() {
		defer h.out.Close()
		defer h.bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if msg, ok := Encode(ev); ok {
					h.out.Publish(msg)
				}
			}
		}
	}()
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int { return h.out.Len() }

// Encode converts a bus event into a client message.
func Encode(ev eventbus.Event) (Message, bool) {
	now := time.Now()
	switch e := ev.(type) {
	case events.SnapshotChanged:
		return Message{Type: "snapshot", Time: now, Data: e.Snapshot}, true
	case events.NotificationChanged:
		return Message{Type: "notification", Time: now, Data: e.Notification}, true
	case events.SlotChanged:
		return Message{Type: "slot", Time: now, Data: SlotState{Busy: e.Busy, Action: e.Action}}, true
	case events.ActionCompleted:
		st := ActionState{
			ID:          e.ID,
			Action:      e.Action,
			AmbulanceID: e.AmbulanceID,
			Outcome:     e.Outcome(),
			LatencyMS:   e.Finished.Sub(e.Started).Milliseconds(),
		}
		if e.Err != nil {
			st.Error = e.Err.Error()
		}
		return Message{Type: "action", Time: e.Finished, Data: st}, true
	default:
		return Message{}, false
	}
}

// ServeHTTP upgrades the request and streams messages until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.out.Subscribe()
	defer h.out.Unsubscribe(sub)

	if h.store != nil {
		if err := write(conn, Message{Type: "snapshot", Time: time.Now(), Data: h.store.List()}); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	h.log.Debugf("websocket client connected from %s", r.RemoteAddr)
	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(writeWait))
				return
			}
			if err := write(conn, msg); err != nil {
				h.log.Debugf("websocket write: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func write(conn *websocket.Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
