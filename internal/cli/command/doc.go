// Package command provides CLI command definitions for timecloak-cli.
//
// It uses urfave/cli/v2 for command parsing. Every command works
// locally against a configuration file: the CLI embeds the same codec
// the server runs, so an operator can mint, decode and verify tokens
// without a server.
package command
