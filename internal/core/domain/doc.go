// Package domain defines the core domain models for TimeCloak.
//
// It contains the substitution matrix (the shared secret lookup table)
// and the structured error taxonomy. Everything else in the system
// depends on this package; it depends on nothing but the standard
// library.
package domain
