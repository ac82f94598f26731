package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

// DebugLogger appends one key=value record per dispatch step to a file:
//
//	[15:04:05.000] submit task=1b4e… name="query:fts -> fox"
//	[15:04:05.012] task task=1b4e… name="query:fts -> fox" state=running->completed
//
// A DebugLogger without a file, or a nil *DebugLogger, discards everything.
type DebugLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewDebugLogger opens logPath for appending, creating parent directories.
// An empty path returns a no-op logger.
func NewDebugLogger(logPath string) (*DebugLogger, error) {
	if logPath == "" {
		return &DebugLogger{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := &DebugLogger{file: f}
	logger.Record("start", "at", time.Now().Format(time.RFC3339), "pid", os.Getpid())
	return logger, nil
}

// NopLogger returns a no-op logger for testing or when logging is disabled.
func NopLogger() *DebugLogger {
	return &DebugLogger{}
}

// Transition records a task moving between states. err is added when set.
func (l *DebugLogger) Transition(id, name string, from, to models.TaskState, err error) {
	kv := []any{"task", id, "name", name, "state", string(from) + "->" + string(to)}
	if err != nil {
		kv = append(kv, "err", err.Error())
	}
	l.Record("task", kv...)
}

// Record writes one event with alternating key/value pairs. A trailing key
// without a value is written with an empty value.
func (l *DebugLogger) Record(event string, kv ...any) {
	if l == nil || l.file == nil {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString("] ")
	b.WriteString(event)
	for i := 0; i < len(kv); i += 2 {
		val := ""
		if i+1 < len(kv) {
			val = fmt.Sprint(kv[i+1])
		}
		fmt.Fprintf(&b, " %v=%s", kv[i], quoteValue(val))
	}
	b.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	l.file.WriteString(b.String())
}

// quoteValue quotes values that would break key=value parsing.
func quoteValue(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// Close closes the log file.
// Safe to call on nil logger or logger without file.
func (l *DebugLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}
