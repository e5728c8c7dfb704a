package reconcile

import (
	"context"
	"sort"
)

// ReconcileAll builds fresh indices and returns one result per key, sorted by key.
func ReconcileAll(ctx context.Context, spec *Spec) ([]Result, error) {
	snap, err := BuildSnapshot(ctx, spec)
	if err != nil {
		return nil, err
	}
	return resultsFromSnapshot(snap, spec.Adapter), nil
}

// ReconcileOne returns the result for a single key, using the cache when the
// spec enables it. Unknown keys produce a result with every source absent.
func ReconcileOne(ctx context.Context, spec *Spec, cache *Cache, key string) (*Result, error) {
	var (
		snap *Snapshot
		err  error
	)
	if spec.CacheTTL > 0 && cache != nil {
		snap, err = cache.GetOrBuild(ctx, spec)
	} else {
		snap, err = BuildSnapshot(ctx, spec)
	}
	if err != nil {
		return nil, err
	}

	result := buildResult(key, snap, spec.Adapter)
	return &result, nil
}

func resultsFromSnapshot(snap *Snapshot, adapter Adapter) []Result {
	keys := buildUnion(snap)
	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		results = append(results, buildResult(key, snap, adapter))
	}
	return results
}

// buildUnion returns every key present in any source, sorted.
func buildUnion(snap *Snapshot) []string {
	union := make(map[string]struct{}, len(snap.CatalogIndex))
	for key := range snap.RecordIndex {
		union[key] = struct{}{}
	}
	for key := range snap.CatalogIndex {
		union[key] = struct{}{}
	}
	for key := range snap.StorageSet {
		union[key] = struct{}{}
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func buildResult(key string, snap *Snapshot, adapter Adapter) Result {
	rec, recPresent := snap.RecordIndex[key]
	cat, catPresent := snap.CatalogIndex[key]
	_, storagePresent := snap.StorageSet[key]

	result := Result{
		ID:             key,
		RecordPresent:  recPresent,
		CatalogPresent: catPresent,
		StoragePresent: storagePresent,
		Mismatch:       []string{},
	}

	if recPresent || catPresent {
		result.Name = adapter.ResolveName(rec, cat)
		result.Metadata = adapter.GetMetadata(rec, cat)
	}
	if recPresent && catPresent {
		result.Mismatch = adapter.CompareFields(rec, cat)
	}
	return result
}
