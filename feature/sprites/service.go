package sprites

import (
	"context"

	"asset-registry/core/logger"
	"asset-registry/core/metrics"
	"asset-registry/core/registry"
	"asset-registry/feature/catalog"

	"go.uber.org/zap"
)

// Service wires the sprite registry to its persisted record and the catalog.
type Service struct {
	cfg      registry.Config
	sprites  *Sprites
	adapter  *registry.Adapter
	resolver *catalog.Resolver
	driver   *registry.Driver[*catalog.Asset]
	logger   *zap.Logger
}

// NewService creates a sprite service. m may be nil.
func NewService(cfg registry.Config, labels *registry.LabelTable, store registry.PersistentStore, resolver *catalog.Resolver, m *metrics.Metrics, log *zap.Logger) *Service {
	reg := registry.New[*catalog.Asset](cfg.Type, labels, log)
	adapter := registry.NewAdapter(store, log)

	return &Service{
		cfg:      cfg,
		sprites:  Wrap(reg),
		adapter:  adapter,
		resolver: resolver,
		driver: registry.NewDriver[*catalog.Asset](reg, adapter, resolver, registry.DriverOptions{
			Concurrency: cfg.ResolveConcurrency,
			Metrics:     m,
			Logger:      log,
		}),
		logger: logger.ForRegistry(log, cfg.Type),
	}
}

// Sprites returns the sprite lookups.
func (s *Service) Sprites() *Sprites {
	return s.sprites
}

// Registry returns the underlying registry.
func (s *Service) Registry() *registry.Registry[*catalog.Asset] {
	return s.sprites.reg
}

// Adapter returns the persistence adapter.
func (s *Service) Adapter() *registry.Adapter {
	return s.adapter
}

// Resolver returns the catalog resolver.
func (s *Service) Resolver() *catalog.Resolver {
	return s.resolver
}

// Group returns the resolver group, preferring the persisted one.
func (s *Service) Group() string {
	if g := s.Registry().Group(); g != "" {
		return g
	}
	return s.cfg.Group
}

// Ensure creates the persisted record if it does not exist yet.
func (s *Service) Ensure(ctx context.Context) error {
	_, err := s.adapter.Ensure(ctx, s.cfg.Type)
	return err
}

// Initialize runs the load and resolve pass once.
func (s *Service) Initialize(ctx context.Context) (*registry.PassResult, error) {
	return s.driver.Initialize(ctx)
}

// Reinitialize forces a fresh load and resolve pass.
func (s *Service) Reinitialize(ctx context.Context) (*registry.PassResult, error) {
	return s.driver.Reinitialize(ctx)
}

// Load decodes the persisted record without resolving any asset. Tooling
// that only edits entries uses it instead of Initialize.
func (s *Service) Load(ctx context.Context) error {
	if err := registry.LoadRegistry(ctx, s.adapter, s.Registry()); err != nil {
		return err
	}
	if s.Registry().Group() == "" {
		s.logger.Debug("Record has no group, using configured group", zap.String("group", s.cfg.Group))
		s.Registry().SetGroup(s.cfg.Group)
	}
	return nil
}

// Save persists the registry.
func (s *Service) Save(ctx context.Context) error {
	return registry.SaveRegistry(ctx, s.adapter, s.Registry())
}
