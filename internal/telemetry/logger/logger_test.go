package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Info("server started", "addr", "127.0.0.1:5180")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["addr"] != "127.0.0.1:5180" {
		t.Errorf("addr = %v", entry["addr"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info line emitted at warn level: %q", buf.String())
	}

	log.Warn("should be kept")
	if buf.Len() == 0 {
		t.Error("warn line missing")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "error", Format: "json", Output: &buf})

	log.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug emitted at error level")
	}

	SetLevel("debug")
	defer SetLevel("info")

	log.Debug("kept")
	if buf.Len() == 0 {
		t.Error("debug line missing after SetLevel(debug)")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	const token = "AbAcAd:AeAfAg2AhAi2AjAk"
	log.Info("verification failed", "token", token, "reason", "expired")

	out := buf.String()
	if strings.Contains(out, token) {
		t.Errorf("token leaked into log output: %q", out)
	}
	if !strings.Contains(out, "expired") {
		t.Errorf("non-sensitive attribute lost: %q", out)
	}
}

func TestMask(t *testing.T) {
	if got := Mask("short"); got != redactedValue {
		t.Errorf("Mask(short) = %q", got)
	}
	if got := Mask("abcdefghijklmnop"); got != "abc...nop" {
		t.Errorf("Mask() = %q", got)
	}
}
