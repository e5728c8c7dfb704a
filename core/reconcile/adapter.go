package reconcile

import "context"

// Adapter loads and compares the three sources for one registry.
type Adapter interface {
	// Name identifies the adapter in cache keys and errors.
	Name() string

	// LoadRecordIndex returns the registry side keyed by reference.
	LoadRecordIndex(ctx context.Context) (map[string]RecordItem, error)

	// LoadCatalogIndex returns the catalog side keyed by reference.
	LoadCatalogIndex(ctx context.Context) (map[string]CatalogItem, error)

	// LoadStorageSet lists blobs under prefix and returns the references they
	// belong to. Blobs the catalog does not know are returned by object key.
	LoadStorageSet(ctx context.Context, prefix string) (map[string]struct{}, error)

	// ResolveName returns a display name. Either item may be nil.
	ResolveName(rec RecordItem, cat CatalogItem) string

	// CompareFields describes differences between two present items.
	CompareFields(rec RecordItem, cat CatalogItem) []string

	// GetMetadata returns extra details for the result. Either item may be nil.
	GetMetadata(rec RecordItem, cat CatalogItem) map[string]string
}

// Mutator is implemented by adapters that can apply plans.
type Mutator interface {
	// DropEntry removes the registry entries pointing at key.
	DropEntry(ctx context.Context, key string) error

	// Unregister removes key from the catalog.
	Unregister(ctx context.Context, key string) error

	// DeleteStorage removes the blob at objectKey.
	DeleteStorage(ctx context.Context, objectKey string) error

	// SyncEntry copies item's fields onto the registry entries pointing at key.
	SyncEntry(ctx context.Context, key string, item CatalogItem) error
}

// EntryBatchDropper lets a Mutator drop several references at once.
type EntryBatchDropper interface {
	DropEntries(ctx context.Context, keys []string) error
}
