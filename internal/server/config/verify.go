// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Verify validates the configuration, including the matrix assumptions
// the token engine itself does not check. It is called at startup and
// again on every hot reload; a failed reload keeps the previous
// configuration running.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyToken(&cfg.Token); err != nil {
		return err
	}
	if err := verifyReplay(&cfg.Replay); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("server.tls_cert_file and server.tls_key_file must be set together")
	}
	if cfg.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	return nil
}

func verifyToken(cfg *TokenSection) error {
	if len(cfg.Matrix) == 0 {
		return errors.New("token.matrix is required")
	}
	if err := cfg.Matrix.Validate(); err != nil {
		return fmt.Errorf("token.matrix: %w", err)
	}
	if cfg.SkewMS <= 0 {
		return errors.New("token.skew_ms must be positive")
	}
	if cfg.Header == "" {
		return errors.New("token.header is required")
	}
	if cfg.Separator == "" {
		return errors.New("token.separator is required")
	}
	if strings.ContainsAny(cfg.Separator, "0123456789") {
		return errors.New("token.separator must not contain ASCII digits")
	}

	// The engine assumes these rather than checking them per call:
	// a duplicate symbol silently decodes to the first digit that
	// claimed it, a digit inside a symbol derails the length-prefix
	// cursor, and a separator occurring inside a symbol splits the
	// token in the wrong place. All three make valid tokens
	// undecodable or ambiguous without ever raising an error, so they
	// must be rejected here.
	seen := make(map[string]string, 10*cfg.Matrix.Columns())
	for digit, row := range cfg.Matrix {
		for _, symbol := range row {
			if strings.ContainsAny(symbol, "0123456789") {
				return fmt.Errorf("token.matrix: symbol %q (digit %s) contains an ASCII digit", symbol, digit)
			}
			if strings.Contains(symbol, cfg.Separator) {
				return fmt.Errorf("token.matrix: symbol %q (digit %s) contains the separator %q", symbol, digit, cfg.Separator)
			}
			if prev, dup := seen[symbol]; dup {
				return fmt.Errorf("token.matrix: symbol %q appears under both digit %s and digit %s", symbol, prev, digit)
			}
			seen[symbol] = digit
		}
	}

	return nil
}

func verifyReplay(cfg *ReplaySection) error {
	switch cfg.Backend {
	case ReplayBackendMemory:
		if cfg.SweepInterval <= 0 {
			return errors.New("replay.sweep_interval must be positive")
		}
	case ReplayBackendBadger:
		if cfg.DataDir == "" {
			return errors.New("replay.data_dir is required for the badger backend")
		}
	case ReplayBackendNone:
	default:
		return fmt.Errorf("replay.backend must be %s, %s or %s", ReplayBackendMemory, ReplayBackendBadger, ReplayBackendNone)
	}
	return nil
}
