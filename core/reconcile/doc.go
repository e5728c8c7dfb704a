// Package reconcile audits a registry against the asset catalog and the
// blobs in object storage.
//
// Three sources are indexed by asset reference: the registry entries (the
// persisted record), the catalog items, and the storage objects. Every key in
// their union gets a Result saying where it is present and how the registry
// entry differs from the catalog item.
//
// # Architecture
//
// 1. Engine: builds the union of keys and one Result per key.
//
// 2. Adapter: loads each source and compares items. feature/audit holds the
// catalog-backed adapter used by the tooling.
//
// 3. Cache: TTL snapshots of the three indices with stampede protection,
// used for repeated single-key lookups.
//
// 4. Plan: derives purge and sync actions from results. ApplyPlan only runs
// them when Options.Confirmed is set and Options.DryRun is not, mirroring
// the confirmation rule of the registry's destructive tooling.
//
// # Usage Example
//
//	spec := &reconcile.Spec{Adapter: audit.NewAdapter(reg, resolver, client, bucket, group), StoragePrefix: "sprites/"}
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, nil, reconcile.Options{DoPurge: true})
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, reconcile.Options{DoPurge: true, Confirmed: true})
package reconcile
