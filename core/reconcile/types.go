package reconcile

import "time"

// Result is the reconciliation output for one asset reference. Storage-only
// blobs unknown to the catalog are reported under their object key.
type Result struct {
	// ID is the asset reference, or the object key of an orphan blob.
	ID string `json:"id"`

	// Name is the display name of the asset.
	Name string `json:"name"`

	// RecordPresent indicates whether a registry entry points at the asset.
	RecordPresent bool `json:"record_present"`

	// CatalogPresent indicates whether the catalog lists the asset.
	CatalogPresent bool `json:"catalog_present"`

	// StoragePresent indicates whether the asset blob exists in storage.
	StoragePresent bool `json:"storage_present"`

	// Mismatch describes field differences between the registry entry and the
	// catalog item, e.g. "filename: record=a.png catalog=b.png".
	Mismatch []string `json:"mismatch"`

	// Metadata carries adapter-specific details such as ids and paths.
	Metadata map[string]string `json:"metadata"`
}

// Orphan reports whether only storage knows the asset.
func (r Result) Orphan() bool {
	return r.StoragePresent && !r.CatalogPresent && !r.RecordPresent
}

// Spec bundles an adapter with its cache and listing settings.
type Spec struct {
	// Adapter provides the source-specific loading and comparison.
	Adapter Adapter

	// CacheTTL is the lifetime of cached indices. Zero disables caching.
	CacheTTL time.Duration

	// StoragePrefix limits the storage listing.
	StoragePrefix string
}

// CacheKey identifies the indices built for this spec.
func (s *Spec) CacheKey() string {
	return s.Adapter.Name() + "|" + s.StoragePrefix
}

// RecordItem is an adapter-defined registry side item.
type RecordItem any

// CatalogItem is an adapter-defined catalog side item.
type CatalogItem any

// ActionType names a planned mutation.
type ActionType string

const (
	// ActionDropEntry removes registry entries pointing at the asset.
	ActionDropEntry ActionType = "drop_entry"
	// ActionUnregister removes the asset from the catalog.
	ActionUnregister ActionType = "unregister"
	// ActionDeleteStorage deletes an orphan blob.
	ActionDeleteStorage ActionType = "delete_storage"
	// ActionSyncEntry copies catalog fields onto the registry entries.
	ActionSyncEntry ActionType = "sync_entry"
)

// Action is one planned mutation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the reference, or object key for storage deletions.
	Key string `json:"key"`

	// Reason explains why the action is needed.
	Reason string `json:"reason"`

	// Item is the catalog source of a sync action.
	Item CatalogItem `json:"-"`
}

// Plan holds reconciliation results and the actions derived from them.
type Plan struct {
	Results []Result    `json:"results"`
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// PlanSummary aggregates a plan.
type PlanSummary struct {
	// TotalItems is the number of distinct keys across all sources.
	TotalItems int `json:"total_items"`

	// NotImported counts catalog assets no registry entry points at.
	NotImported int `json:"not_imported"`

	// BrokenReferences counts registry references the catalog does not know.
	BrokenReferences int `json:"broken_references"`

	// MissingStorage counts catalog assets without a blob.
	MissingStorage int `json:"missing_storage"`

	// Orphans counts blobs known to neither the catalog nor the registry.
	Orphans int `json:"orphans"`

	// Mismatches counts assets with field differences.
	Mismatches int `json:"mismatches"`

	// PurgeActions counts planned removals.
	PurgeActions int `json:"purge_actions"`

	// SyncActions counts planned syncs.
	SyncActions int `json:"sync_actions"`
}

// Options controls planning and applying.
type Options struct {
	// DryRun prevents execution of any mutation.
	DryRun bool

	// DoPurge plans removal of broken entries, blobless catalog items and orphan blobs.
	DoPurge bool

	// DoSync plans copying catalog fields onto mismatched registry entries.
	DoSync bool

	// Confirmed must be set for any mutation to run.
	Confirmed bool
}
