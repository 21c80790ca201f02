package debuglog

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, s string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_Event(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = func() time.Time { return time.Date(2025, 1, 6, 9, 30, 15, 0, time.UTC) }

	l.Event("KEY_PRESS", map[string]any{"key": "j"})
	l.Error("save", errors.New("disk full"))
	l.Error("save", nil)

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "KEY_PRESS", entries[0]["event"])
	assert.Equal(t, "j", entries[0]["key"])
	assert.Equal(t, float64(1), entries[0]["seq"])
	assert.Equal(t, "09:30:15.000", entries[0]["ts"])
	assert.Equal(t, "ERROR", entries[1]["event"])
	assert.Equal(t, "disk full", entries[1]["error"])
}

func TestLogger_ReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Event("X", map[string]any{"event": "spoofed", "seq": 99})

	entries := decodeLines(t, buf.String())
	assert.Equal(t, "X", entries[0]["event"])
	assert.Equal(t, float64(1), entries[0]["seq"])
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.False(t, l.Enabled())
	l.Event("X", nil)
	l.Error("ctx", errors.New("boom"))
	assert.NoError(t, l.Close())
}

func TestInitAndShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, Init(true, path))
	Log("HELLO", map[string]any{"n": 1})
	Shutdown()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := decodeLines(t, string(data))
	require.Len(t, entries, 3)
	assert.Equal(t, "DEBUG_START", entries[0]["event"])
	assert.Equal(t, "HELLO", entries[1]["event"])
	assert.Equal(t, "DEBUG_END", entries[2]["event"])
	assert.Nil(t, Default())

	require.NoError(t, Init(false, ""))
	assert.False(t, Default().Enabled())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long te...", Truncate("long text here", 10))
	assert.Equal(t, "회의록...", Truncate("회의록 정리하기", 6))
}
