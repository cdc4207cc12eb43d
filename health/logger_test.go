package health

import (
	"context"
	"sync"

	"github.com/jonwraymond/healthgate/observe"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

// recordingLogger captures log events for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields []observe.Field) {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: m})
	l.mu.Unlock()
}

func (l *recordingLogger) Info(_ context.Context, msg string, fields ...observe.Field) {
	l.record("info", msg, fields)
}

func (l *recordingLogger) Warn(_ context.Context, msg string, fields ...observe.Field) {
	l.record("warn", msg, fields)
}

func (l *recordingLogger) Error(_ context.Context, msg string, fields ...observe.Field) {
	l.record("error", msg, fields)
}

func (l *recordingLogger) Debug(_ context.Context, msg string, fields ...observe.Field) {
	l.record("debug", msg, fields)
}

func (l *recordingLogger) With(...observe.Field) observe.Logger {
	return l
}

// byLevel returns the entries logged at level.
func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

// byMessage returns the entries with the given message.
func (l *recordingLogger) byMessage(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logEntry
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}
