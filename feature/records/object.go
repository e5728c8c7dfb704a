package records

import (
	"context"
	"errors"
	"fmt"
	"path"

	"asset-registry/core/registry"
	"asset-registry/core/storage"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ObjectStore keeps one JSON document per registry type in a bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

var _ registry.PersistentStore = (*ObjectStore)(nil)

// NewObjectStore creates a store writing under prefix in bucket.
func NewObjectStore(client storage.Client, bucket, prefix string, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key of typeName's record.
func (s *ObjectStore) Key(typeName string) string {
	return path.Join(s.prefix, typeName+".json")
}

// Load downloads and parses the record of typeName.
func (s *ObjectStore) Load(ctx context.Context, typeName string) (*registry.Record, error) {
	data, err := storage.ReadObject(ctx, s.client, s.bucket, s.Key(typeName))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", registry.ErrRecordNotFound, typeName)
	}
	if err != nil {
		return nil, err
	}

	rec := registry.NewRecord(typeName)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", s.Key(typeName), err)
	}
	if rec.Entries == nil {
		rec.Entries = make(map[string]string)
	}
	rec.Type = typeName
	return rec, nil
}

// Create uploads an empty record for typeName.
func (s *ObjectStore) Create(ctx context.Context, typeName string) (*registry.Record, error) {
	rec := registry.NewRecord(typeName)
	if err := s.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("Created registry record", zap.String("registry", typeName), zap.String("backend", BackendStorage))
	return rec, nil
}

// Save overwrites the record document.
func (s *ObjectStore) Save(ctx context.Context, rec *registry.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.Type, err)
	}
	return storage.WriteObject(ctx, s.client, s.bucket, s.Key(rec.Type), data, "application/json")
}
