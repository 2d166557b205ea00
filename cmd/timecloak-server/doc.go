// Package main provides the entry point for timecloak-server.
//
// The server is the TimeCloak service that provides:
//
//   - HTTP/HTTPS API for minting and verifying tokens
//   - Header-based token authentication for protected routes
//   - Replay protection with a memory or badger backed cache
//   - Prometheus metrics
//
// Usage:
//
//	timecloak-server [flags]
//	timecloak-server --config /path/to/config.yaml
//
// The server loads configuration, builds the token codec from the
// configured matrix, and hot-reloads both when the file changes.
package main
