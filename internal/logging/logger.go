// Package logging provides leveled logging and run tracing for wordcount.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RunLogger appending one JSONL event per counting run (~/.wordcount/runs.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. At this level rendered reports are logged too.
const LevelTrace = slog.LevelDebug - 4

// RunsFile is the file name RunLogger appends to.
const RunsFile = "runs.jsonl"

// ParseLevel maps "info", "debug" or "trace" (case-insensitive) to a slog.Level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RunEvent describes one counting run.
type RunEvent struct {
	Time          time.Time `json:"time"`
	Command       string    `json:"command"`
	Sources       []string  `json:"sources,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	TotalWords    int       `json:"total_words"`
	DistinctWords int       `json:"distinct_words"`
	DurationMs    int64     `json:"duration_ms"`
	HistoryID     int64     `json:"history_id,omitempty"`
}

// RunLogger appends RunEvents to a JSONL file. It is safe for concurrent use,
// and a nil *RunLogger is a valid no-op logger.
type RunLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewRunLogger opens dir/runs.jsonl for append when level is debug or trace.
// At info level, or when the file cannot be opened, it returns nil.
func NewRunLogger(dir string, level string) *RunLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, RunsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &RunLogger{file: f}
}

// Log writes ev as a single JSONL line, stamping Time when it is zero.
func (rl *RunLogger) Log(ev RunEvent) {
	if rl == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file == nil {
		return
	}
	_, _ = rl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rl *RunLogger) Close() {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file != nil {
		rl.file.Close()
		rl.file = nil
	}
}
