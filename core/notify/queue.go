package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/medfleet/core/events"
	"github.com/kilianp07/medfleet/core/logger"
	"github.com/kilianp07/medfleet/core/metrics"
	"github.com/kilianp07/medfleet/core/model"
	"github.com/kilianp07/medfleet/internal/eventbus"
)

// Config holds the per-kind display durations.
type Config struct {
	DefaultMS int `json:"default_ms"`
	ErrorMS   int `json:"error_ms"`
}

// SetDefaults applies 3s for success/info and 4s for error notifications.
func (c *Config) SetDefaults() {
	if c.DefaultMS <= 0 {
		c.DefaultMS = 3000
	}
	if c.ErrorMS <= 0 {
		c.ErrorMS = 4000
	}
}

// TTL returns the display duration for kind.
func (c Config) TTL(kind model.NotificationKind) time.Duration {
	if kind == model.NotificationError {
		return time.Duration(c.ErrorMS) * time.Millisecond
	}
	return time.Duration(c.DefaultMS) * time.Millisecond
}

// Queue holds at most one notification. Publishing replaces the current one.
// Change events are published while the queue lock is held, so subscribers
// see them in the order the changes happened.
type Queue struct {
	cfg  Config
	bus  eventbus.EventBus
	sink metrics.NotificationRecorder
	log  logger.Logger

	mu      sync.Mutex
	current *model.Notification
	timer   *time.Timer
	gen     uint64
}

// NewQueue creates an empty queue.
func NewQueue(cfg Config, bus eventbus.EventBus, sink metrics.MetricsSink) *Queue {
	cfg.SetDefaults()
	if bus == nil {
		bus = eventbus.NopBus{}
	}
	q := &Queue{cfg: cfg, bus: bus, log: logger.NopLogger{}}
	if r, ok := sink.(metrics.NotificationRecorder); ok {
		q.sink = r
	}
	return q
}

// SetLogger configures where sink errors are reported.
func (q *Queue) SetLogger(l logger.Logger) {
	q.log = logger.OrNop(l)
}

// Publish shows a notification using the kind-specific lifetime.
func (q *Queue) Publish(kind model.NotificationKind, msg string) model.Notification {
	return q.PublishFor(kind, msg, q.cfg.TTL(kind))
}

// PublishFor shows a notification for ttl, replacing and cancelling any
// pending one.
func (q *Queue) PublishFor(kind model.NotificationKind, msg string, ttl time.Duration) model.Notification {
	now := time.Now()
	n := model.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	q.mu.Lock()
	q.stopLocked()
	q.gen++
	gen := q.gen
	q.current = &n
	q.timer = time.AfterFunc(ttl, func() { q.expire(gen) })
	cp := n
	q.bus.Publish(events.NotificationChanged{Notification: &cp})
	q.mu.Unlock()

	if q.sink != nil {
		if err := q.sink.RecordNotification(metrics.NotificationEvent{Kind: kind, Time: now}); err != nil {
			q.log.Errorf("notification metrics error: %v", err)
		}
	}
	return n
}

// Dismiss clears the current notification and cancels its timer.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	q.stopLocked()
	q.gen++
	q.current = nil
	q.bus.Publish(events.NotificationChanged{})
	q.mu.Unlock()
}

// Current returns the active notification, if any.
func (q *Queue) Current() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return model.Notification{}, false
	}
	return *q.current, true
}

// Close cancels the pending timer without publishing.
func (q *Queue) Close() {
	q.mu.Lock()
	q.stopLocked()
	q.gen++
	q.mu.Unlock()
}

// expire clears the notification published under gen. Timers belonging to a
// replaced notification find a newer generation and do nothing.
func (q *Queue) expire(gen uint64) {
	q.mu.Lock()
	if gen != q.gen || q.current == nil {
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.timer = nil
	q.bus.Publish(events.NotificationChanged{})
	q.mu.Unlock()
}

func (q *Queue) stopLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
