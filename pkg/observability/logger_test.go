package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// decodeLogLine parses a single JSON log line into a flat map.
func decodeLogLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	return entry
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("no log output")
	}
	return decodeLogLine(t, lines[len(lines)-1])
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.Info("server started")

	entry := lastLogLine(t, &buf)
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v, want 'server started'", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry missing timestamp")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Debug("noise")
	logger.Info("more noise")
	if buf.Len() != 0 {
		t.Fatalf("below-threshold messages were written: %s", buf.String())
	}

	logger.Warn("kept")
	logger.Error("also kept")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2: %s", len(lines), buf.String())
	}
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("user_id", "alice").Info("session opened")

	entry := lastLogLine(t, &buf)
	if entry["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", entry["user_id"])
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithFields(map[string]any{
		"path":   "/analysis/alerts",
		"status": 200,
	}).Info("request handled")

	entry := lastLogLine(t, &buf)
	if entry["path"] != "/analysis/alerts" {
		t.Errorf("path = %v, want /analysis/alerts", entry["path"])
	}
	// JSON numbers decode as float64.
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
}

func TestLoggerWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	child := logger.WithField("request_id", "req-1")
	logger.Info("from parent")
	child.Info("from child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	parent := decodeLogLine(t, lines[0])
	if _, ok := parent["request_id"]; ok {
		t.Error("parent logger picked up the child's field")
	}
	childEntry := decodeLogLine(t, lines[1])
	if childEntry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", childEntry["request_id"])
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("connection refused")).Error("backend unreachable")

	entry := lastLogLine(t, &buf)
	if entry["error"] != "connection refused" {
		t.Errorf("error = %v, want 'connection refused'", entry["error"])
	}
}

func TestLoggerWithNilError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(nil).Info("all good")

	entry := lastLogLine(t, &buf)
	if _, ok := entry["error"]; ok {
		t.Error("nil error produced an error field")
	}
}

func TestLoggerFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, &buf)

	logger.Debugf("loaded %d modules", 7)
	logger.Infof("listening on %s", ":8080")
	logger.Warnf("cache at %d%%", 90)
	logger.Errorf("retry %d failed", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	wantMsgs := []string{"loaded 7 modules", "listening on :8080", "cache at 90%", "retry 3 failed"}
	wantLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, line := range lines {
		entry := decodeLogLine(t, line)
		if entry["msg"] != wantMsgs[i] {
			t.Errorf("line %d msg = %v, want %q", i, entry["msg"], wantMsgs[i])
		}
		if entry["level"] != wantLevels[i] {
			t.Errorf("line %d level = %v, want %s", i, entry["level"], wantLevels[i])
		}
	}
}

func TestLoggerNilOutputDefaultsToStdout(t *testing.T) {
	logger := NewLogger(InfoLevel, nil)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestLogLevelString(t *testing.T) {
	cases := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}
