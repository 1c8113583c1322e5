// Package observability exposes Prometheus metrics for dialogue runs, fed by
// lifecycle hooks and the dialogue function registry.
package observability
