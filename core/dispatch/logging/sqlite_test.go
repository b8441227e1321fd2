package logging

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/medfleet/core/model"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	for _, rec := range sampleRecords(now) {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), LogQuery{AmbulanceID: "AMB-001"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	out, err = store.Query(context.Background(), LogQuery{Action: model.ActionRequest, Start: now.Add(-3 * time.Minute)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].ActionID != "a1" {
		t.Fatalf("unexpected records %+v", out)
	}
}
