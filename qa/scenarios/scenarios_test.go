package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no scenarios found")
	names := map[string]string{}
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		if prev, dup := names[sc.Name]; dup {
			t.Fatalf("scenario %s defined in %s and %s", sc.Name, prev, f)
		}
		names[sc.Name] = f
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	require.Error(t, err)

	cases := map[string]string{
		"syntax":       ":",
		"unnamed":      "steps:\n  - wait: true\n",
		"no steps":     "name: empty\n",
		"two ops":      "name: x\nsteps:\n  - select: AMB-001\n    wait: true\n",
		"stray reject": "name: x\nsteps:\n  - wait: true\n    reject: slot_busy\n",
		"empty step":   "name: x\nsteps:\n  - {}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeScenario(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadCallReject(t *testing.T) {
	sc, err := Load(writeScenario(t, "name: call\nsteps:\n  - call: HOSP-404\n    reject: target_not_found\n"))
	require.NoError(t, err)
	require.Equal(t, "HOSP-404", sc.Steps[0].Call)
}
