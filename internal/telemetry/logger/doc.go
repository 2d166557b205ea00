// Package logger provides structured logging for TimeCloak.
//
// It configures the standard library log/slog for JSON (default) or
// text output with a dynamically adjustable level, and redacts
// sensitive attributes before they reach the handler. Tokens embed a
// timestamp behind nothing stronger than the matrix substitution, so a
// logged token is a replayable credential for the length of the skew
// window; attribute values under token-ish keys are therefore masked,
// never printed whole.
package logger
