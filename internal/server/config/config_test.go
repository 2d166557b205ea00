package config

import (
	"strings"
	"testing"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

func configuredMatrix() domain.Matrix {
	m := make(domain.Matrix, 10)
	for d := 0; d < 10; d++ {
		row := make([]string, 2)
		for c := 0; c < 2; c++ {
			row[c] = string(rune('a'+d)) + string(rune('A'+c))
		}
		m[domain.DigitKeys[d:d+1]] = row
	}
	return m
}

func validConfig() *ServerConfig {
	cfg := Default()
	cfg.Token.Matrix = configuredMatrix()
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Token.Separator != ":" {
		t.Errorf("separator = %q", cfg.Token.Separator)
	}
	if cfg.Token.SkewMS != 30000 {
		t.Errorf("skew_ms = %d", cfg.Token.SkewMS)
	}
	if cfg.Token.Header != "X-Timecloak-Token" {
		t.Errorf("header = %q", cfg.Token.Header)
	}
	if cfg.Replay.Backend != ReplayBackendMemory {
		t.Errorf("replay backend = %q", cfg.Replay.Backend)
	}
	if cfg.Token.Matrix != nil {
		t.Error("the matrix must have no default")
	}
}

func TestVerify_Valid(t *testing.T) {
	if err := Verify(validConfig()); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestVerify_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantMsg string
	}{
		{
			name:    "missing matrix",
			mutate:  func(c *ServerConfig) { c.Token.Matrix = nil },
			wantMsg: "token.matrix is required",
		},
		{
			name:    "malformed matrix",
			mutate:  func(c *ServerConfig) { delete(c.Token.Matrix, "5") },
			wantMsg: "token.matrix",
		},
		{
			name:    "duplicate symbol",
			mutate:  func(c *ServerConfig) { c.Token.Matrix["3"][1] = c.Token.Matrix["7"][0] },
			wantMsg: "appears under both",
		},
		{
			name:    "digit inside symbol",
			mutate:  func(c *ServerConfig) { c.Token.Matrix["2"][0] = "a1" },
			wantMsg: "contains an ASCII digit",
		},
		{
			name:    "separator inside symbol",
			mutate:  func(c *ServerConfig) { c.Token.Matrix["4"][1] = ":x" },
			wantMsg: "contains the separator",
		},
		{
			name:    "empty separator",
			mutate:  func(c *ServerConfig) { c.Token.Separator = "" },
			wantMsg: "token.separator is required",
		},
		{
			name:    "digit separator",
			mutate:  func(c *ServerConfig) { c.Token.Separator = "9" },
			wantMsg: "must not contain ASCII digits",
		},
		{
			name:    "zero skew",
			mutate:  func(c *ServerConfig) { c.Token.SkewMS = 0 },
			wantMsg: "token.skew_ms",
		},
		{
			name:    "missing header",
			mutate:  func(c *ServerConfig) { c.Token.Header = "" },
			wantMsg: "token.header",
		},
		{
			name:    "missing addr",
			mutate:  func(c *ServerConfig) { c.Server.Addr = "" },
			wantMsg: "server.addr",
		},
		{
			name:    "cert without key",
			mutate:  func(c *ServerConfig) { c.Server.TLSCertFile = "cert.pem" },
			wantMsg: "must be set together",
		},
		{
			name:    "unknown replay backend",
			mutate:  func(c *ServerConfig) { c.Replay.Backend = "redis" },
			wantMsg: "replay.backend",
		},
		{
			name: "badger without data dir",
			mutate: func(c *ServerConfig) {
				c.Replay.Backend = ReplayBackendBadger
				c.Replay.DataDir = ""
			},
			wantMsg: "replay.data_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Verify() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := validConfig()
	sanitized := Sanitize(cfg)

	if sanitized.Token.Matrix != nil {
		t.Error("Sanitize() kept the matrix")
	}
	if cfg.Token.Matrix == nil {
		t.Error("Sanitize() mutated the original")
	}
	if sanitized.Server.Addr != cfg.Server.Addr {
		t.Error("Sanitize() lost non-sensitive fields")
	}
}
