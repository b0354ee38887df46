package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ErrUnknownLevel is returned by LookupLevel for names it does not know
var ErrUnknownLevel = errors.New("unknown log level")

// Level represents a log level
type Level int

const (
	// DebugLevel carries per-tick and per-prune-pass detail
	DebugLevel Level = iota
	// InfoLevel covers merges, page changes and simulation runs
	InfoLevel
	// WarnLevel covers rejected payloads and dropped frames
	WarnLevel
	// ErrorLevel is for diverged simulations and failed servers
	ErrorLevel
)

var levelNames = map[string]Level{
	"debug":   DebugLevel,
	"info":    InfoLevel,
	"warn":    WarnLevel,
	"warning": WarnLevel,
	"error":   ErrorLevel,
}

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LookupLevel resolves a level name in any case
func LookupLevel(s string) (Level, error) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return InfoLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
	return l, nil
}

// ParseLevel is LookupLevel falling back to InfoLevel
func ParseLevel(s string) Level {
	l, _ := LookupLevel(s)
	return l
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// Keys promoted from fields to the top level of a LogEntry
const (
	keySession   = "session"
	keyComponent = "component"
)

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With creates a child logger with the given fields pre-set. A
	// Component field also selects that component's level override.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON LogEntry per line
type JSONLogger struct {
	writer    io.Writer
	level     Level
	session   string
	component string
	fields    []Field
	overrides *componentLevels
	mu        sync.Mutex
}

// componentLevels holds per-component minimum levels, shared by a logger
// and all of its children
type componentLevels struct {
	mu sync.RWMutex
	m  map[string]Level
}

func (c *componentLevels) get(name string) (Level, bool) {
	if c == nil {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.m[name]
	return l, ok
}

func (c *componentLevels) set(name string, level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[name] = level
}

// LogEntry is a single log line. Session and component are lifted out of
// the fields so lines can be filtered per layout session.
type LogEntry struct {
	Time      string         `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Session   string         `json:"session,omitempty"`
	Component string         `json:"component,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything; sessions and binaries use it when no
// logger is configured
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return InfoLevel }

// NewNopLogger creates a logger that discards all output
func NewNopLogger() Logger {
	return NopLogger{}
}

// TimedOperation logs an operation with its latency when it ends
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
