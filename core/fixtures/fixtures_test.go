package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.Len(t, s.Routes, 3)
	require.Equal(t, "ROUTE-001", s.Routes[0].ID)
	require.Equal(t, 2, s.Routes[0].SavingsMinutes())
	require.Equal(t, 7, s.TotalSavingsMinutes())
	require.Len(t, s.Predictions, 8)
	require.InDelta(t, 0.92, s.Predictions[7].Confidence, 1e-9)
	require.Len(t, s.Hotspots, 5)
	require.Equal(t, "high", s.Hotspots[0].Severity)
	require.Len(t, s.Alerts, 3)
	require.Equal(t, 43, s.Dashboard.KPIs.ActiveAmbulances)
	require.Len(t, s.Dashboard.ZoneResponse, 5)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - id: R1\n    estimated_minutes: 9\n    optimized_minutes: 4\n"), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, s.TotalSavingsMinutes())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_, err = Parse([]byte("routes: [:"))
	require.Error(t, err)
}
