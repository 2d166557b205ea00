// Package handler implements the HTTP request handlers for the
// TimeCloak server: token minting, explicit verification and health.
package handler
