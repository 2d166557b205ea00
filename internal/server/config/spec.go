// Package config defines the server configuration structure.
package config

import (
	"time"

	"github.com/yndnr/timecloak-go/internal/core/domain"
)

// ServerConfig is the root configuration for timecloak-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Token  TokenSection  `koanf:"token"`
	Replay ReplaySection `koanf:"replay"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is the per-client-IP request budget in requests per
	// second (0 disables limiting).
	RateLimit int `koanf:"rate_limit"`
}

// TokenSection configures the token engine.
type TokenSection struct {
	// Matrix is the shared secret substitution table. Required; both
	// the issuing and the verifying side must load the identical table.
	Matrix domain.Matrix `koanf:"matrix"`

	// Separator splits the sauce from the body.
	Separator string `koanf:"separator"`

	// SkewMS is the allowed clock-skew window in milliseconds.
	SkewMS int64 `koanf:"skew_ms"`

	// Header is the HTTP request header carrying the token.
	Header string `koanf:"header"`
}

// Replay cache backends.
const (
	ReplayBackendMemory = "memory"
	ReplayBackendBadger = "badger"
	ReplayBackendNone   = "none"
)

// ReplaySection configures the replay cache.
type ReplaySection struct {
	// Backend selects the cache implementation: memory, badger, or
	// none (verification then skips the replay check entirely).
	Backend string `koanf:"backend"`

	// DataDir is the badger backend's storage directory.
	DataDir string `koanf:"data_dir"`

	// SweepInterval is the memory backend's expired-entry sweep period.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Skew returns the skew window as a duration.
func (t TokenSection) Skew() time.Duration {
	return time.Duration(t.SkewMS) * time.Millisecond
}
