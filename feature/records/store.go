package records

import (
	"errors"
	"fmt"

	"asset-registry/core/registry"
	"asset-registry/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewStore returns the PersistentStore selected by cfg.Backend. db is only
// needed by the database backend and client by the storage backend.
func NewStore(cfg Config, db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) (registry.PersistentStore, error) {
	if !cfg.IsValidBackend() {
		return nil, fmt.Errorf("invalid records backend %q", cfg.Backend)
	}

	switch cfg.Backend {
	case BackendDatabase:
		if db == nil {
			return nil, errors.New("database backend requires a database connection")
		}
		store := NewGormStore(db, logger)
		if cfg.AutoMigrate {
			if err := store.Migrate(); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		if client == nil {
			return nil, errors.New("storage backend requires a storage client")
		}
		return NewObjectStore(client, bucket, cfg.Prefix, logger), nil
	}
}
