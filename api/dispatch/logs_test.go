package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/model"
)

type memStore struct{ recs []logging.LogRecord }

func (m *memStore) Append(ctx context.Context, r logging.LogRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q logging.LogQuery) ([]logging.LogRecord, error) {
	var res []logging.LogRecord
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[len(res)-q.Limit:]
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Now()
	for _, r := range []logging.LogRecord{
		{Timestamp: now.Add(-2 * time.Hour), ActionID: "a1", Action: model.ActionDispatch, AmbulanceID: "AMB-001", Outcome: "success"},
		{Timestamp: now.Add(-time.Minute), ActionID: "a2", Action: model.ActionCancel, AmbulanceID: "AMB-001", Outcome: "success"},
		{Timestamp: now, ActionID: "a3", Action: model.ActionAlert, Outcome: "success"},
	} {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewLogHandler(store, "tok")

	get := func(target string) []logging.LogRecord {
		t.Helper()
		req := httptest.NewRequest("GET", target, nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", target, rr.Code)
		}
		var out []logging.LogRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}

	if out := get("/api/actions/log?ambulance_id=AMB-001"); len(out) != 2 {
		t.Fatalf("expected 2 records got %d", len(out))
	}
	if out := get("/api/actions/log?action=cancel"); len(out) != 1 || out[0].ActionID != "a2" {
		t.Fatalf("unexpected action filter result %+v", out)
	}
	if out := get("/api/actions/log?since=1h"); len(out) != 2 {
		t.Fatalf("expected 2 recent records got %d", len(out))
	}
	if out := get("/api/actions/log?limit=1"); len(out) != 1 || out[0].ActionID != "a3" {
		t.Fatalf("expected newest record got %+v", out)
	}
	if out := get("/api/actions/log?ambulance_id=none"); out == nil || len(out) != 0 {
		t.Fatalf("expected empty array got %+v", out)
	}

	// unauthorized
	req := httptest.NewRequest("GET", "/api/actions/log", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	// invalid limit
	req = httptest.NewRequest("GET", "/api/actions/log?limit=x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}
