package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/core/model"
)

func sampleRecords(now time.Time) []LogRecord {
	return []LogRecord{
		{Timestamp: now.Add(-2 * time.Minute), ActionID: "a1", Action: model.ActionRequest, Outcome: "success", LatencyMS: 1500},
		{Timestamp: now.Add(-time.Minute), ActionID: "a2", Action: model.ActionDispatch, AmbulanceID: "AMB-001", Outcome: "success", LatencyMS: 1500},
		{Timestamp: now, ActionID: "a3", Action: model.ActionCancel, AmbulanceID: "AMB-002", Outcome: "failed", Error: "target not found", LatencyMS: 1500},
	}
}

func TestLogQuery_Match(t *testing.T) {
	now := time.Now()
	recs := sampleRecords(now)
	require.True(t, LogQuery{}.Match(recs[0]))
	require.False(t, LogQuery{AmbulanceID: "AMB-001"}.Match(recs[0]))
	require.True(t, LogQuery{Action: model.ActionCancel}.Match(recs[2]))
	require.False(t, LogQuery{Start: now.Add(-30 * time.Second)}.Match(recs[1]))
	require.False(t, LogQuery{End: now.Add(-90 * time.Second)}.Match(recs[1]))
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "actions.log"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	now := time.Now()
	for _, r := range sampleRecords(now) {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a1", all[0].ActionID)

	out, err := store.Query(ctx, LogQuery{AmbulanceID: "AMB-002"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "target not found", out[0].Error)

	last, err := store.Query(ctx, LogQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, last, 1)
	require.Equal(t, "a3", last[0].ActionID)
}

func TestNewStore_Backends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"none", "jsonl", "rotating", "sqlite"} {
		c := Config{Backend: backend, Path: filepath.Join(dir, backend+".log")}
		c.SetDefaults()
		require.NoError(t, c.Validate())
		s, err := NewStore(c)
		require.NoError(t, err, backend)
		require.NoError(t, s.Append(context.Background(), LogRecord{Timestamp: time.Now(), Action: model.ActionAlert}))
		require.NoError(t, s.Close())
	}
	require.Error(t, Config{Backend: "kafka"}.Validate())
}
