package cmd

import (
	"context"
	"fmt"

	"asset-registry/core/config"
	"asset-registry/core/database"
	"asset-registry/core/logger"
	"asset-registry/core/metrics"
	"asset-registry/core/prefs"
	"asset-registry/core/registry"
	"asset-registry/core/storage"
	"asset-registry/feature/catalog"
	"asset-registry/feature/records"
	"asset-registry/feature/sprites"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles everything a registry command needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	client   storage.Client
	db       *gorm.DB
	resolver *catalog.Resolver
	service  *sprites.Service
	metrics  *prometheus.Registry
}

// newApp loads configuration and connects the stores selected by it.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	var db *gorm.DB
	if cfg.Records.Backend == records.BackendDatabase {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	store, err := records.NewStore(cfg.Records, db, client, cfg.Storage.Bucket, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	var p registry.Preferences = prefs.NewMemory()
	if cfg.Prefs.Path != "" {
		p = prefs.NewFile(cfg.Prefs.Path, l)
	}

	window := cfg.Prefs.Window
	if window == "" {
		window = cfg.Registry.Type
	}
	labels := registry.NewLabelTable(window, p)

	promReg := prometheus.NewRegistry()
	resolver := catalog.NewResolver(client, cfg.Storage.Bucket, cfg.Catalog, l)
	service := sprites.NewService(cfg.Registry, labels, store, resolver, metrics.New(promReg), l)

	return &app{
		cfg:      cfg,
		log:      l,
		client:   client,
		db:       db,
		resolver: resolver,
		service:  service,
		metrics:  promReg,
	}, nil
}

// load decodes the persisted record without resolving assets.
func (a *app) load(ctx context.Context) error {
	if err := a.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	return nil
}

// save persists the registry.
func (a *app) save(ctx context.Context) error {
	if err := a.service.Save(ctx); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}
	return nil
}

// registry returns the sprite registry.
func (a *app) registry() *registry.Registry[*catalog.Asset] {
	return a.service.Registry()
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}

// withApp builds an app, runs fn and releases the app afterwards.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}
