// Package debuglog writes JSON-lines debug events when --debug is set.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultPath is where Init writes when no path is given.
const DefaultPath = "weekplan-debug.log"

// Logger writes one JSON object per event. A nil or disabled Logger drops
// everything, so callers never need to check.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	seq    int
	now    func() time.Time
}

// New returns a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Open creates (truncating) the log file at path.
func Open(path string) (*Logger, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}
	l := New(f)
	l.closer = f
	l.Event("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     l.now().Format(time.RFC3339),
	})
	return l, nil
}

// Enabled reports whether events are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.w != nil
}

// Event writes a structured entry.
func (l *Logger) Event(event string, data map[string]any) {
	if !l.Enabled() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := make(map[string]any, len(data)+3)
	for k, v := range data {
		entry[k] = v
	}
	entry["seq"] = l.seq
	entry["ts"] = l.now().Format("15:04:05.000")
	entry["event"] = event

	b, err := json.Marshal(entry)
	if err != nil {
		b, _ = json.Marshal(map[string]any{"seq": l.seq, "event": "MARSHAL_ERROR", "error": err.Error()})
	}
	_, _ = fmt.Fprintf(l.w, "%s\n", b)
}

// Error records err under context.
func (l *Logger) Error(context string, err error) {
	if err == nil {
		return
	}
	l.Event("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}

// Close writes the end marker and closes the file, if any.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}
	l.Event("DEBUG_END", map[string]any{"time": l.now().Format(time.RFC3339)})
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var (
	defaultMu sync.RWMutex
	defaultLg *Logger
)

// Init installs the process-wide logger. With enabled false it installs a
// no-op logger.
func Init(enabled bool, path string) error {
	if !enabled {
		SetDefault(nil)
		return nil
	}
	l, err := Open(path)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLg = l
	defaultMu.Unlock()
}

// Default returns the process-wide logger, possibly nil.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLg
}

// Log writes an event through the process-wide logger.
func Log(event string, data map[string]any) {
	Default().Event(event, data)
}

// Shutdown closes the process-wide logger.
func Shutdown() {
	_ = Default().Close()
	SetDefault(nil)
}

// Truncate shortens s to max runes for log readability.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
