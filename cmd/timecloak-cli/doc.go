// Package main provides the entry point for timecloak-cli.
//
// The CLI tool provides local access to the token engine for:
//
//   - Minting tokens (at the current or an explicit instant)
//   - Decoding and verifying tokens
//   - Generating fresh substitution matrices
//
// Usage:
//
//	timecloak-cli --config server.yaml mint
//	timecloak-cli --config server.yaml decode --verify TOKEN
//	timecloak-cli matrix generate --columns 8 --symbol-size 2
//
// Every command runs the codec in-process; no server connection is
// needed.
package main
