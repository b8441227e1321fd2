package logging

import (
	"context"
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

// LogRecord captures one completed coordinator command.
type LogRecord struct {
	Timestamp   time.Time        `json:"timestamp"`
	ActionID    string           `json:"action_id"`
	Action      model.ActionKind `json:"action"`
	AmbulanceID string           `json:"ambulance_id,omitempty"`
	Outcome     string           `json:"outcome"`
	Error       string           `json:"error,omitempty"`
	LatencyMS   int64            `json:"latency_ms"`
}

// LogQuery defines filters for retrieving records. Zero fields match everything.
type LogQuery struct {
	Start       time.Time
	End         time.Time
	AmbulanceID string
	Action      model.ActionKind
	Limit       int
}

// Match reports whether r satisfies the query filters (Limit excluded).
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.AmbulanceID != "" && r.AmbulanceID != q.AmbulanceID {
		return false
	}
	if q.Action != model.ActionNone && r.Action != q.Action {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// limit keeps the newest n records.
func limit(res []LogRecord, n int) []LogRecord {
	if n > 0 && len(res) > n {
		return res[len(res)-n:]
	}
	return res
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }
func (NopStore) Close() error { return nil }
