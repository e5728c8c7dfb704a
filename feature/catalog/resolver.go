package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"asset-registry/core/storage"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownReference is returned when a GUID is not in the manifest.
	ErrUnknownReference = errors.New("unknown catalog reference")
	// ErrAlreadyRegistered is returned when registering a path twice.
	ErrAlreadyRegistered = errors.New("asset already registered")
)

const manifestKey = "manifest"

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return time.Minute
	}
	return 2 * ttl
}

// Resolver serves registry references out of a JSON manifest and the asset
// blobs it points at, both kept in one storage bucket.
type Resolver struct {
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger

	cache *gocache.Cache
	sf    singleflight.Group
	// writeMu serializes read-modify-write cycles on the manifest.
	writeMu sync.Mutex
}

// NewResolver creates a resolver over bucket.
func NewResolver(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatConcurrency <= 0 {
		cfg.StatConcurrency = 16
	}
	return &Resolver{
		client: client,
		bucket: bucket,
		cfg:    cfg,
		logger: logger,
		cache:  gocache.New(cfg.CacheTTL(), cleanupInterval(cfg.CacheTTL())),
	}
}

// Manifest returns a private copy of the current manifest. A missing manifest
// object reads as an empty catalog.
func (r *Resolver) Manifest(ctx context.Context) (*Manifest, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return nil, err
	}
	return m.clone(), nil
}

// Invalidate drops the cached manifest.
func (r *Resolver) Invalidate() {
	r.cache.Delete(manifestKey)
}

// manifest returns the shared cached manifest. Callers must not mutate it.
func (r *Resolver) manifest(ctx context.Context) (*Manifest, error) {
	if v, ok := r.cache.Get(manifestKey); ok {
		if m, ok := v.(*Manifest); ok {
			return m, nil
		}
	}

	v, err, _ := r.sf.Do(manifestKey, func() (any, error) {
		m, err := r.download(ctx)
		if err != nil {
			return nil, err
		}
		if ttl := r.cfg.CacheTTL(); ttl > 0 {
			r.cache.Set(manifestKey, m, ttl)
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manifest), nil
}

func (r *Resolver) download(ctx context.Context) (*Manifest, error) {
	data, err := storage.ReadObject(ctx, r.client, r.bucket, r.cfg.Object)
	if errors.Is(err, storage.ErrObjectNotFound) {
		r.logger.Warn("Catalog manifest missing, using empty catalog", zap.String("object", r.cfg.Object))
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", r.cfg.Object, err)
	}
	r.logger.Debug("Loaded catalog manifest", zap.Int("items", len(m.Items)), zap.Int("labels", len(m.Labels)))
	return &m, nil
}

// update applies fn to a fresh copy of the manifest and uploads the result.
func (r *Resolver) update(ctx context.Context, fn func(m *Manifest) error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.Invalidate()
	current, err := r.manifest(ctx)
	if err != nil {
		return err
	}
	m := current.clone()
	if err := fn(m); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := storage.WriteObject(ctx, r.client, r.bucket, r.cfg.Object, data, "application/json"); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}
