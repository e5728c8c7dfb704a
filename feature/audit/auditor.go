package audit

import (
	"context"

	"asset-registry/core/reconcile"
	"asset-registry/core/registry"
	"asset-registry/core/storage"
	"asset-registry/feature/catalog"

	"go.uber.org/zap"
)

// Auditor runs reconcile plans for one registry with a private snapshot cache.
type Auditor struct {
	spec  *reconcile.Spec
	cache *reconcile.Cache
}

// New creates an auditor for reg over the catalog group.
func New[V comparable](cfg Config, reg *registry.Registry[V], resolver *catalog.Resolver, client storage.Client, bucket, group string, logger *zap.Logger) *Auditor {
	return &Auditor{
		spec: &reconcile.Spec{
			Adapter:       NewAdapter(reg, resolver, client, bucket, group, logger),
			CacheTTL:      cfg.CacheTTL(),
			StoragePrefix: cfg.Prefix,
		},
		cache: reconcile.NewCache(),
	}
}

// Plan reconciles and plans without mutating anything.
func (a *Auditor) Plan(ctx context.Context, opts reconcile.Options) (*reconcile.Plan, error) {
	a.cache.Invalidate(a.spec)
	return reconcile.ReconcileWithPlan(ctx, a.spec, a.cache, opts)
}

// Apply executes plan when opts allow it. Registry changes are in memory only;
// the caller saves the registry.
func (a *Auditor) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options) (int, error) {
	n, err := reconcile.ApplyPlan(ctx, a.spec, plan, opts)
	if n > 0 {
		a.cache.Invalidate(a.spec)
	}
	return n, err
}

// Check returns the audit result of one reference.
func (a *Auditor) Check(ctx context.Context, ref registry.Reference) (*reconcile.Result, error) {
	return reconcile.ReconcileOne(ctx, a.spec, a.cache, ref.String())
}
