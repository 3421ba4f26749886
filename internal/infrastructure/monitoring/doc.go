// Package monitoring provides Prometheus metrics for the broker:
// registry activity (registrations, lookups, sessions, capacity
// rejections), wire command dispatch, WebSocket links, and the HTTP
// inspection surface. Metrics are exposed on /metrics via the standard
// promhttp handler.
package monitoring
