package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/medfleet/core/dispatch/logging"
	"github.com/kilianp07/medfleet/core/model"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgPath, lsZone, lsStatus, actionsAmbulance, actionsKind = "", "", "", "", ""
		lsFormat, actionsFormat = "table", "table"
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestFleetLs(t *testing.T) {
	out := execute(t, "fleet", "ls")
	for _, id := range []string{"AMB-001", "AMB-005"} {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "5 ambulances, 3 available, 2 on call")

	out = execute(t, "fleet", "ls", "--status", "on-call")
	assert.Contains(t, out, "AMB-002")
	assert.NotContains(t, out, "AMB-001")
}

func TestActions(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "actions.log")
	store, err := logging.NewJSONLStore(journal)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, store.Append(context.Background(), logging.LogRecord{
		Timestamp: now.Add(-48 * time.Hour), ActionID: "old", Action: model.ActionAlert, Outcome: "success",
	}))
	require.NoError(t, store.Append(context.Background(), logging.LogRecord{
		Timestamp: now, ActionID: "new", Action: model.ActionDispatch, AmbulanceID: "AMB-004", Outcome: "failed", Error: "AMB-004 is already on-call",
	}))
	require.NoError(t, store.Close())

	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logging:\n  backend: jsonl\n  path: "+journal+"\n"), 0o600))

	out := execute(t, "actions", "-c", cfgFile, "--since", "1h")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "AMB-004")
	assert.Contains(t, lines[1], "already on-call")
}

func TestFleetLsCSV(t *testing.T) {
	out := execute(t, "fleet", "ls", "--format", "csv", "--zone", "Zone A")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "AMB-001,available,Zone A,"))
}
