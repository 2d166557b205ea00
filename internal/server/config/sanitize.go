// Package config defines the server configuration structure.
package config

// Sanitize returns a copy of the config safe for logging: the matrix
// is the shared secret and is dropped entirely, not masked, because
// even a partial table narrows the forgery search space.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Token.Matrix = nil
	return &sanitized
}
