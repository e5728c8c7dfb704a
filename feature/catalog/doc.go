// Package catalog resolves registry references against an asset catalog kept
// in object storage.
//
// The catalog is a JSON manifest (by default catalog/catalog.json) listing
// every addressable asset with its GUID, address, blob path, group and labels.
// The GUID is the registry reference; the blob at the path is the resolved
// value.
//
// # Resolver
//
// Resolver implements registry.AssetResolver[*Asset]. Manifest downloads are
// cached for Config.CacheTTLSeconds and concurrent downloads are collapsed
// with singleflight. Every write re-reads the manifest, applies the change to
// a copy, uploads it and drops the cache.
//
// # Tooling
//
// Register, Unregister, ResetAddresses, SaveEntries, AddLabel and RemoveLabels
// back the catalog side of the command line tooling.
package catalog
