// Package audit plugs a registry, its catalog group and the storage bucket
// into the reconcile engine.
//
// Adapter indexes registry entries by reference, catalog items by GUID and
// blobs by the GUID of the catalog item pointing at them. It also implements
// reconcile.Mutator: dropping entries and syncing filenames change the
// registry in memory, while unregistering and blob deletion write through to
// the catalog and the bucket immediately.
package audit
