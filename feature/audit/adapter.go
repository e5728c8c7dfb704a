package audit

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"asset-registry/core/reconcile"
	"asset-registry/core/registry"
	"asset-registry/core/storage"
	"asset-registry/feature/catalog"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RecordEntry is the registry side of one reference.
type RecordEntry struct {
	// IDs lists every id pointing at the reference, ascending.
	IDs      []int
	Filename string
	Labels   []string
}

// Adapter audits a registry against a catalog group and its storage bucket.
type Adapter[V comparable] struct {
	reg      *registry.Registry[V]
	resolver *catalog.Resolver
	client   storage.Client
	bucket   string
	group    string
	logger   *zap.Logger
}

// NewAdapter creates an adapter. An empty group audits the whole catalog.
func NewAdapter[V comparable](reg *registry.Registry[V], resolver *catalog.Resolver, client storage.Client, bucket, group string, logger *zap.Logger) *Adapter[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter[V]{reg: reg, resolver: resolver, client: client, bucket: bucket, group: group, logger: logger}
}

var (
	_ reconcile.Adapter           = (*Adapter[string])(nil)
	_ reconcile.Mutator           = (*Adapter[string])(nil)
	_ reconcile.EntryBatchDropper = (*Adapter[string])(nil)
)

// Name identifies the audited registry and group.
func (a *Adapter[V]) Name() string {
	return "catalog:" + a.reg.Name() + ":" + a.group
}

// LoadRecordIndex indexes the registry entries by reference.
func (a *Adapter[V]) LoadRecordIndex(ctx context.Context) (map[string]reconcile.RecordItem, error) {
	if !a.reg.Loaded() {
		return nil, registry.ErrNotInitialized
	}

	idx := make(map[string]reconcile.RecordItem)
	for _, e := range a.reg.Entries() {
		if e.Reference.IsZero() {
			continue
		}
		key := e.Reference.String()
		if prev, ok := idx[key].(RecordEntry); ok {
			prev.IDs = append(prev.IDs, e.ID)
			idx[key] = prev
			continue
		}
		idx[key] = RecordEntry{IDs: []int{e.ID}, Filename: e.Filename, Labels: e.Labels}
	}
	return idx, nil
}

// LoadCatalogIndex indexes the catalog items of the group by GUID.
func (a *Adapter[V]) LoadCatalogIndex(ctx context.Context) (map[string]reconcile.CatalogItem, error) {
	m, err := a.resolver.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]reconcile.CatalogItem, len(m.Items))
	for _, it := range m.Items {
		if a.group != "" && it.Group != a.group {
			continue
		}
		idx[it.GUID] = it
	}
	return idx, nil
}

// LoadStorageSet lists blobs under prefix. Blobs listed in the catalog map to
// their GUID; any other blob is returned by object key.
func (a *Adapter[V]) LoadStorageSet(ctx context.Context, prefix string) (map[string]struct{}, error) {
	m, err := a.resolver.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]string, len(m.Items))
	for _, it := range m.Items {
		byPath[it.Path] = it.GUID
	}

	set := make(map[string]struct{})
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list storage objects: %w", obj.Err)
		}
		if guid, ok := byPath[obj.Key]; ok {
			set[guid] = struct{}{}
			continue
		}
		set[obj.Key] = struct{}{}
	}
	return set, nil
}

// ResolveName prefers the catalog address over the registry filename.
func (a *Adapter[V]) ResolveName(rec reconcile.RecordItem, cat reconcile.CatalogItem) string {
	if it, ok := cat.(catalog.Item); ok {
		return it.Address
	}
	if r, ok := rec.(RecordEntry); ok {
		return r.Filename
	}
	return ""
}

// CompareFields reports filename drift, registry labels the catalog item lacks
// and references shared by several ids.
func (a *Adapter[V]) CompareFields(rec reconcile.RecordItem, cat reconcile.CatalogItem) []string {
	r := rec.(RecordEntry)
	it := cat.(catalog.Item)

	var out []string
	if r.Filename != it.Filename() {
		out = append(out, fmt.Sprintf("filename: record=%s catalog=%s", r.Filename, it.Filename()))
	}
	for _, l := range r.Labels {
		if !slices.Contains(it.Labels, l) {
			out = append(out, fmt.Sprintf("label %s: missing on catalog item", l))
		}
	}
	if len(r.IDs) > 1 {
		out = append(out, "duplicate ids: "+joinIDs(r.IDs))
	}
	return out
}

// GetMetadata returns ids, path and group when known.
func (a *Adapter[V]) GetMetadata(rec reconcile.RecordItem, cat reconcile.CatalogItem) map[string]string {
	md := make(map[string]string)
	if r, ok := rec.(RecordEntry); ok {
		md["ids"] = joinIDs(r.IDs)
	}
	if it, ok := cat.(catalog.Item); ok {
		md["path"] = it.Path
		md["group"] = it.Group
	}
	return md
}

// DropEntry removes every id pointing at key.
func (a *Adapter[V]) DropEntry(ctx context.Context, key string) error {
	return a.DropEntries(ctx, []string{key})
}

// DropEntries removes every id pointing at any of keys in one pass.
func (a *Adapter[V]) DropEntries(ctx context.Context, keys []string) error {
	drop := make(map[registry.Reference]struct{}, len(keys))
	for _, k := range keys {
		drop[registry.Reference(k)] = struct{}{}
	}
	for _, e := range a.reg.Entries() {
		if _, ok := drop[e.Reference]; !ok {
			continue
		}
		if err := a.reg.Remove(e.ID); err != nil {
			return err
		}
		a.logger.Info("Dropped registry entry", zap.Int("id", e.ID), zap.String("reference", e.Reference.String()))
	}
	return nil
}

// Unregister removes key from the catalog.
func (a *Adapter[V]) Unregister(ctx context.Context, key string) error {
	return a.resolver.Unregister(ctx, registry.Reference(key))
}

// DeleteStorage removes an orphan blob.
func (a *Adapter[V]) DeleteStorage(ctx context.Context, objectKey string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return err
	}
	a.logger.Info("Deleted orphan blob", zap.String("key", objectKey))
	return nil
}

// SyncEntry copies the catalog filename onto the entries pointing at key.
// Label drift is left to save-group, which pushes registry labels to the catalog.
func (a *Adapter[V]) SyncEntry(ctx context.Context, key string, item reconcile.CatalogItem) error {
	it, ok := item.(catalog.Item)
	if !ok {
		return fmt.Errorf("unexpected catalog item %T for %s", item, key)
	}
	for _, e := range a.reg.Entries() {
		if e.Reference.String() != key {
			continue
		}
		e.Filename = it.Filename()
		if err := a.reg.Set(e.ID, e); err != nil {
			return err
		}
	}
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
