// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultAddr = "127.0.0.1:5180"

	DefaultSeparator = ":"
	DefaultSkewMS    = 30000
	DefaultHeader    = "X-Timecloak-Token"

	DefaultReplayBackend = ReplayBackendMemory
	DefaultSweepInterval = 30 * time.Second
	DefaultDataDir       = "/var/lib/timecloak-server/replay"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration. The matrix has no
// default: it is the shared secret and must come from configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr: DefaultAddr,
		},
		Token: TokenSection{
			Separator: DefaultSeparator,
			SkewMS:    DefaultSkewMS,
			Header:    DefaultHeader,
		},
		Replay: ReplaySection{
			Backend:       DefaultReplayBackend,
			DataDir:       DefaultDataDir,
			SweepInterval: DefaultSweepInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
