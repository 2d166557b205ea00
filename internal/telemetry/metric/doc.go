// Package metric provides Prometheus metrics for TimeCloak.
//
// It exposes counters for issued tokens and verification outcomes, a
// latency histogram for verification, and a gauge tracking the replay
// cache size, all served from the /metrics endpoint.
package metric
