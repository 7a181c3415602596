// Package server serves a built site for local preview, together with a
// health endpoint and, when enabled, Prometheus metrics.
package server
