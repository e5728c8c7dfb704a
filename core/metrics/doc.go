// Package metrics exposes Prometheus collectors for registry initialize passes.
//
// Collectors are registered on a caller supplied prometheus.Registerer so that
// tests and multiple registries in one process do not collide on the default
// registry.
package metrics
