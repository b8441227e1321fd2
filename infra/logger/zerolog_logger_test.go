package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "coordinator", "warn")
	l.Infof("hidden")
	l.Warnf("slot busy for %s", "dispatch")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "coordinator", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slot busy for dispatch", entry["message"])
}

func TestZerologLoggerDebugwFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "sim", "debug")
	l.Debugw("tick", map[string]any{"ambulances": 5})
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 5, entry["ambulances"])
}
