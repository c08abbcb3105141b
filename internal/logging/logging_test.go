package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logger logs debug", LevelDebug, LevelDebug, true},
		{"info logger skips debug", LevelInfo, LevelDebug, false},
		{"info logger logs info", LevelInfo, LevelInfo, true},
		{"warn logger skips info", LevelWarn, LevelInfo, false},
		{"error logger skips warn", LevelError, LevelWarn, false},
		{"error logger logs error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, tt.minLevel, FormatHuman)
			logger.log(tt.logLevel, "test message", nil)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.shouldLog {
				t.Errorf("shouldLog = %v, got hasOutput = %v", tt.shouldLog, hasOutput)
			}
		})
	}
}

func TestHumanFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LevelInfo, FormatHuman)

	logger.Info("indexed repository", map[string]any{"files": 42})

	output := buf.String()
	if !strings.Contains(output, "[info]") {
		t.Errorf("expected '[info]' in output, got: %s", output)
	}
	if !strings.Contains(output, "indexed repository") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "files=42") {
		t.Errorf("expected field in output, got: %s", output)
	}
}

func TestHumanFormatNoFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LevelInfo, FormatHuman)

	logger.Info("no fields", nil)

	if strings.Contains(buf.String(), "|") {
		t.Errorf("expected no field separator, got: %s", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, LevelInfo, FormatJSON)

	logger.Warn("repair iteration", map[string]any{"stepNo": 3})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v (%s)", err, buf.String())
	}
	if decoded["level"] != "warn" {
		t.Errorf("level = %v, want warn", decoded["level"])
	}
	if decoded["message"] != "repair iteration" {
		t.Errorf("message = %v, want 'repair iteration'", decoded["message"])
	}
	fields, ok := decoded["fields"].(map[string]any)
	if !ok {
		t.Fatal("expected fields map")
	}
	if fields["stepNo"] != float64(3) {
		t.Errorf("fields.stepNo = %v, want 3", fields["stepNo"])
	}
}

func TestPackageLevelDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	SetDefault(New(buf, LevelDebug, FormatHuman))
	t.Cleanup(func() { SetDefault(New(io.Discard, LevelInfo, FormatHuman)) })

	Debug("scoped debug", nil)
	if !strings.Contains(buf.String(), "scoped debug") {
		t.Errorf("expected package-level Debug to reach the configured default logger, got: %s", buf.String())
	}
}

func TestLevelStringConstants(t *testing.T) {
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	seen := map[string]bool{}
	for _, l := range levels {
		s := l.String()
		if s == "" || s == "unknown" {
			t.Errorf("Level %d rendered as %q", l, s)
		}
		seen[s] = true
	}
	if len(seen) != len(levels) {
		t.Error("expected each level to render distinctly")
	}
}
