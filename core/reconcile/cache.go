package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Snapshot holds the indices of all three sources at one point in time.
type Snapshot struct {
	RecordIndex  map[string]RecordItem
	CatalogIndex map[string]CatalogItem
	StorageSet   map[string]struct{}

	// Built is when the snapshot was taken.
	Built time.Time

	// TTL is how long the snapshot stays fresh.
	TTL time.Duration
}

// IsExpired reports whether the snapshot should be rebuilt.
func (s *Snapshot) IsExpired() bool {
	if s.TTL == 0 {
		return true
	}
	return time.Since(s.Built) > s.TTL
}

// BuildSnapshot loads the three indices concurrently. The first failing load
// cancels the others.
func BuildSnapshot(ctx context.Context, spec *Spec) (*Snapshot, error) {
	snap := &Snapshot{Built: time.Now(), TTL: spec.CacheTTL}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := spec.Adapter.LoadRecordIndex(gctx)
		snap.RecordIndex = idx
		return err
	})
	g.Go(func() error {
		idx, err := spec.Adapter.LoadCatalogIndex(gctx)
		snap.CatalogIndex = idx
		return err
	})
	g.Go(func() error {
		set, err := spec.Adapter.LoadStorageSet(gctx, spec.StoragePrefix)
		snap.StorageSet = set
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Cache keeps snapshots per spec and collapses concurrent rebuilds.
type Cache struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
	sf    singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{snaps: make(map[string]*Snapshot)}
}

// GetOrBuild returns a fresh snapshot for spec, building it if needed.
func (c *Cache) GetOrBuild(ctx context.Context, spec *Spec) (*Snapshot, error) {
	key := spec.CacheKey()
	if snap, ok := c.fresh(key); ok {
		return snap, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if snap, ok := c.fresh(key); ok {
			return snap, nil
		}
		snap, err := BuildSnapshot(ctx, spec)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.snaps[key] = snap
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the snapshot of spec.
func (c *Cache) Invalidate(spec *Spec) {
	c.mu.Lock()
	delete(c.snaps, spec.CacheKey())
	c.mu.Unlock()
}

func (c *Cache) fresh(key string) (*Snapshot, bool) {
	c.mu.RLock()
	snap, ok := c.snaps[key]
	c.mu.RUnlock()
	if !ok || snap.IsExpired() {
		return nil, false
	}
	return snap, true
}
