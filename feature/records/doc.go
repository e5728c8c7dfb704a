// Package records provides the PersistentStore backends that hold registry
// records between runs.
//
// # Backends
//
// GormStore writes each record to three tables: registry_records (type and
// group), registry_entries (the flat id to encoded entry map) and
// registry_labels (the ordered label table). Save replaces the entries and
// labels of a type inside one transaction so stale ids never survive a save.
//
// ObjectStore writes each record as a JSON document at <prefix>/<type>.json in
// the storage bucket.
//
// NewStore picks the backend from Config.Backend.
package records
