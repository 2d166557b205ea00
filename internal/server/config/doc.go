// Package config defines the server configuration structure.
//
// Beyond structural defaults it owns the configuration-time
// assumptions the token engine deliberately does not enforce at
// runtime: global symbol uniqueness and the separator being disjoint
// from matrix symbols and ASCII digits. Violating those would not
// crash the engine, it would silently produce ambiguous tokens, so
// Verify rejects them at startup instead.
package config
