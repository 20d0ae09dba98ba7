package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is a single captured log line
type Entry struct {
	Level   string
	Message string
	Fields  []interface{}
}

// MemoryLogger keeps every log line in memory. It is meant for tests that
// assert on warnings emitted by the engine.
type MemoryLogger struct {
	mu      *sync.Mutex
	entries *[]Entry
	fields  []interface{}
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
	}
}

func (l *MemoryLogger) record(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := append(append([]interface{}{}, l.fields...), kv...)
	*l.entries = append(*l.entries, Entry{Level: level, Message: msg, Fields: fields})
}

// Entries returns the captured lines, optionally limited to one level
func (l *MemoryLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, e := range *l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether a line at level contains substr
func (l *MemoryLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func (l *MemoryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.record("debug", msg, keysAndValues)
}
func (l *MemoryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.record("info", msg, keysAndValues)
}
func (l *MemoryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.record("warn", msg, keysAndValues)
}
func (l *MemoryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.record("error", msg, keysAndValues)
}
func (l *MemoryLogger) Fatal(msg string, keysAndValues ...interface{}) {
	l.record("fatal", msg, keysAndValues)
}

func (l *MemoryLogger) Debugf(format string, args ...interface{}) {
	l.record("debug", fmt.Sprintf(format, args...), nil)
}
func (l *MemoryLogger) Infof(format string, args ...interface{}) {
	l.record("info", fmt.Sprintf(format, args...), nil)
}
func (l *MemoryLogger) Warnf(format string, args ...interface{}) {
	l.record("warn", fmt.Sprintf(format, args...), nil)
}
func (l *MemoryLogger) Errorf(format string, args ...interface{}) {
	l.record("error", fmt.Sprintf(format, args...), nil)
}
func (l *MemoryLogger) Fatalf(format string, args ...interface{}) {
	l.record("fatal", fmt.Sprintf(format, args...), nil)
}

// With returns a logger sharing the same buffer with extra fields attached
func (l *MemoryLogger) With(keysAndValues ...interface{}) Logger {
	return &MemoryLogger{
		mu:      l.mu,
		entries: l.entries,
		fields:  append(append([]interface{}{}, l.fields...), keysAndValues...),
	}
}

func (l *MemoryLogger) WithComponent(componentName string) Logger {
	return l.With("component", componentName)
}
func (l *MemoryLogger) WithName(name string) Logger { return l.With("name", name) }
func (l *MemoryLogger) WithServiceName(serviceName string) Logger {
	return l.With("service", serviceName)
}
func (l *MemoryLogger) WithHostName(hostName string) Logger { return l.With("host", hostName) }
func (l *MemoryLogger) Sync() error                         { return nil }
