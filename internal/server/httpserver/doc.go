// Package httpserver provides the HTTP/HTTPS server for TimeCloak.
//
// It wires the issuer and verifier services behind a small REST
// surface and implements the host integration contract: a middleware
// that pulls the token from a configured request header, verifies it,
// and either attaches the token and its timestamp to the request
// context or short-circuits with a generic unauthorized response.
package httpserver
