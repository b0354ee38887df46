package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLookupLevel(t *testing.T) {
	for _, in := range []string{"debug", " Info ", "WARNING", "Error"} {
		if _, err := LookupLevel(in); err != nil {
			t.Errorf("LookupLevel(%q) error: %v", in, err)
		}
	}
	for _, in := range []string{"", "verbose", "trace"} {
		if _, err := LookupLevel(in); !errors.Is(err, ErrUnknownLevel) {
			t.Errorf("LookupLevel(%q) = %v, want ErrUnknownLevel", in, err)
		}
	}
}

func TestDomainFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("prune pass",
		Session("0b7e"),
		NodeKey("artist-1"),
		EdgeKey("artist-1-alias-artist-2"),
		Page(2),
		Alpha(0.5),
		Tick(17),
		Threshold(3, 100),
	)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	f := entries[0].Fields

	if entries[0].Session != "0b7e" || f["node_key"] != "artist-1" || f["edge_key"] != "artist-1-alias-artist-2" {
		t.Errorf("Key fields not encoded: %v", f)
	}
	if f["page"] != float64(2) || f["alpha"] != 0.5 || f["tick"] != float64(17) {
		t.Errorf("Numeric fields not encoded: %v", f)
	}
	threshold, ok := f["threshold"].(map[string]any)
	if !ok || threshold["max_distance"] != float64(3) || threshold["min_links"] != float64(100) {
		t.Errorf("Threshold field = %v", f["threshold"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("tick")
	logger.Info("merge applied")
	logger.Warn("stale merge dropped")
	logger.Error("simulation diverged", Error(errors.New("NaN position")))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("Unexpected levels %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[1].Fields["error"] != "NaN position" {
		t.Errorf("error field = %v", entries[1].Fields["error"])
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v after SetLevel(DebugLevel)", logger.GetLevel())
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("pager"), Session("s-1"))
	child.Info("page selected", Page(3))
	logger.Info("parent entry")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Component != "pager" || entries[0].Session != "s-1" {
		t.Errorf("Preset fields missing: %+v", entries[0])
	}
	if _, ok := entries[0].Fields["component"]; ok {
		t.Errorf("component left in fields: %v", entries[0].Fields)
	}
	if entries[0].Fields["page"] != float64(3) {
		t.Errorf("page field = %v", entries[0].Fields["page"])
	}
	if entries[1].Fields != nil || entries[1].Component != "" || entries[1].Session != "" {
		t.Errorf("Parent logger picked up child fields: %+v", entries[1])
	}
}

func TestJSONLogger_PromotesPerCallFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(Session("s-1"))

	logger.Info("merged", Session("s-2"), Component("graph"), Count(4))
	logger.Info("odd", Any("session", 7))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Session != "s-2" || entries[0].Component != "graph" {
		t.Errorf("per-call session/component not promoted: %+v", entries[0])
	}
	if len(entries[0].Fields) != 1 || entries[0].Fields["count"] != float64(4) {
		t.Errorf("fields = %v", entries[0].Fields)
	}
	// only string values are lifted
	if entries[1].Session != "s-1" || entries[1].Fields["session"] != float64(7) {
		t.Errorf("non-string session handled wrong: %+v", entries[1])
	}
}

func TestJSONLogger_ComponentLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	logger.SetComponentLevel("prune", DebugLevel)
	logger.SetComponentLevel("broadcast", ErrorLevel)

	prune := logger.With(Component("prune"))
	bcast := logger.With(Component("broadcast"))
	other := logger.With(Component("session"))

	prune.Debug("pass", Threshold(3, 1))
	bcast.Warn("frame dropped")
	bcast.Error("send failed")
	other.Debug("hidden")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Component != "prune" || entries[0].Level != "DEBUG" {
		t.Errorf("prune override not applied: %+v", entries[0])
	}
	if entries[1].Component != "broadcast" || entries[1].Level != "ERROR" {
		t.Errorf("broadcast override not applied: %+v", entries[1])
	}
	if prune.GetLevel() != DebugLevel || other.GetLevel() != InfoLevel {
		t.Errorf("levels = %v, %v", prune.GetLevel(), other.GetLevel())
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("simulation ended")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "merge", Session("s-1"))
	timer.End(Count(3))
	timer.EndError(errors.New("boom"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Fields["count"] != float64(3) {
		t.Errorf("Unexpected End entry: %+v", entries[0])
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("latency field missing")
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "boom" {
		t.Errorf("Unexpected EndError entry: %+v", entries[1])
	}
}

func TestGlobalWith(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))

	With(Component("session")).Info("started")
	Info("global")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Component != "session" {
		t.Errorf("component = %q", entries[0].Component)
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info("ignored", Page(1))
	if l.With(Component("x")) == nil {
		t.Error("NopLogger.With returned nil")
	}
}

func BenchmarkJSONLogger_TickFiltered(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("tick", Tick(uint64(i)), Alpha(0.5))
	}
}
