package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		writer:    writer,
		level:     level,
		fields:    make([]Field, 0),
		overrides: &componentLevels{m: make(map[string]Level)},
	}
}

// NewDefaultLogger creates a logger that writes to stderr at INFO level.
// Stdout is left to the position output of the binaries.
func NewDefaultLogger() *JSONLogger {
	return NewJSONLogger(os.Stderr, InfoLevel)
}

// log is the internal logging method
func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := LogEntry{
		Time:      time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Session:   l.session,
		Component: l.component,
	}
	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		if promote(&entry, f) {
			continue
		}
		fieldMap[f.Key] = f.Value
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}

	data = append(data, '\n')
	l.writer.Write(data)
}

// promote lifts string session and component fields onto the entry
func promote(entry *LogEntry, f Field) bool {
	v, ok := f.Value.(string)
	if !ok {
		return false
	}
	switch f.Key {
	case keySession:
		entry.Session = v
	case keyComponent:
		entry.Component = v
	default:
		return false
	}
	return true
}

// Debug logs a debug-level message
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger with the given fields pre-set. A child
// tagged with a component that has an override logs at that level.
func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &JSONLogger{
		writer:    l.writer,
		level:     l.level,
		session:   l.session,
		component: l.component,
		fields:    make([]Field, 0, len(l.fields)+len(fields)),
		overrides: l.overrides,
	}
	child.fields = append(child.fields, l.fields...)
	var entry LogEntry
	for _, f := range fields {
		if !promote(&entry, f) {
			child.fields = append(child.fields, f)
		}
	}
	if entry.Session != "" {
		child.session = entry.Session
	}
	if entry.Component != "" {
		child.component = entry.Component
		if lvl, ok := l.overrides.get(entry.Component); ok {
			child.level = lvl
		}
	}
	return child
}

// SetComponentLevel overrides the level of children later created with
// Component(name). Loggers already handed out keep their level.
func (l *JSONLogger) SetComponentLevel(name string, level Level) {
	l.overrides.set(name, level)
}

// SetLevel sets the minimum log level
func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Global default logger
var (
	defaultLogger Logger
	once          sync.Once
)

// DefaultLogger returns the global default logger, honouring LOG_LEVEL
func DefaultLogger() Logger {
	once.Do(func() {
		if defaultLogger != nil {
			return
		}
		level := InfoLevel
		if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
			level = ParseLevel(levelStr)
		}
		defaultLogger = NewJSONLogger(os.Stderr, level)
	})
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	defaultLogger = logger
}

// Info logs an info-level message using the default logger
func Info(msg string, fields ...Field) {
	DefaultLogger().Info(msg, fields...)
}

// ErrorLog logs an error-level message using the default logger.
// Named ErrorLog to avoid conflict with the Error field constructor.
func ErrorLog(msg string, fields ...Field) {
	DefaultLogger().Error(msg, fields...)
}

// With creates a child of the default logger
func With(fields ...Field) Logger {
	return DefaultLogger().With(fields...)
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation at debug level with its duration
func (t *TimedOperation) End(extra ...Field) {
	t.logger.Debug(t.msg, t.withLatency(extra)...)
}

// EndInfo logs the operation at info level with its duration
func (t *TimedOperation) EndInfo(extra ...Field) {
	t.logger.Info(t.msg, t.withLatency(extra)...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, t.withLatency([]Field{Error(err)})...)
}

// Elapsed returns the time since the timer started
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *TimedOperation) withLatency(extra []Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(extra)+1)
	out = append(out, t.fields...)
	out = append(out, extra...)
	return append(out, Latency(t.Elapsed()))
}
