// Package service provides the domain services for TimeCloak.
//
// IssuerService mints tokens on the issuing side; VerifierService
// checks them on the verifying side, combining the codec's decode with
// the freshness-window check and replay-cache coordination. Both are
// stateless per call: the only state they touch is the immutable codec
// and the externally owned replay cache.
package service
