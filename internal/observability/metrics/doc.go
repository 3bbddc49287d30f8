// Package metrics provides centralized Prometheus metrics.
//
// Metrics are registered with the default registry via promauto and exposed
// through promhttp on the metrics listener. HTTP-level metrics live in
// registry.go; gatekeeper pipeline metrics live in vote.go.
package metrics
