package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"asset-registry/core/logger"
	"asset-registry/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultResolveConcurrency bounds in-flight resolutions when none is configured.
const DefaultResolveConcurrency = 16

// Source is the part of an AssetResolver the driver needs.
type Source[V any] interface {
	Loader[V]
	Sizer
}

// DriverOptions tunes a Driver.
type DriverOptions struct {
	// Concurrency bounds in-flight resolutions. Zero uses DefaultResolveConcurrency.
	Concurrency int
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// Logger may be nil.
	Logger *zap.Logger
}

// PassResult summarizes one load and resolve pass.
type PassResult struct {
	// Total is the number of decoded entries.
	Total int
	// Resolved counts entries whose value was materialized.
	Resolved int
	// Failed counts entries whose resolution failed. Their values stay unresolved.
	Failed int
	// Skipped counts entries without a reference.
	Skipped int
	// Bytes is the download size estimate, zero when the estimate failed.
	Bytes int64
	// Duration is the wall time of the pass.
	Duration time.Duration
}

// Driver loads a registry from persistence and resolves every entry through
// a resolver, guarded by the registry's Gate.
type Driver[V comparable] struct {
	reg     *Registry[V]
	adapter *Adapter
	source  Source[V]
	opts    DriverOptions
	logger  *zap.Logger

	mu   sync.Mutex
	last *PassResult
}

// NewDriver creates a driver for reg.
func NewDriver[V comparable](reg *Registry[V], adapter *Adapter, source Source[V], opts DriverOptions) *Driver[V] {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultResolveConcurrency
	}
	return &Driver[V]{
		reg:     reg,
		adapter: adapter,
		source:  source,
		opts:    opts,
		logger:  logger.ForRegistry(opts.Logger, reg.Name()),
	}
}

// Initialize runs the pass once per cycle. Concurrent callers share one pass.
func (d *Driver[V]) Initialize(ctx context.Context) (*PassResult, error) {
	err := d.reg.Gate().Initialize(ctx, d.pass)
	return d.Last(), err
}

// Reinitialize reloads and re-resolves the registry regardless of its state.
func (d *Driver[V]) Reinitialize(ctx context.Context) (*PassResult, error) {
	err := d.reg.Gate().Reinitialize(ctx, d.pass)
	return d.Last(), err
}

// Last returns the result of the most recent completed pass, or nil.
func (d *Driver[V]) Last() *PassResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return nil
	}
	res := *d.last
	return &res
}

func (d *Driver[V]) pass(ctx context.Context) error {
	start := time.Now()
	d.logger.Info("Initializing registry")

	res, err := d.resolveAll(ctx)
	res.Duration = time.Since(start)

	d.mu.Lock()
	d.last = res
	d.mu.Unlock()

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	d.opts.Metrics.ObserveInitialize(d.reg.Name(), outcome, res.Duration)

	if err != nil {
		d.logger.Error("Registry initialize failed", zap.Error(err))
		return err
	}

	d.logger.Info("Registry initialized",
		zap.Int("total", res.Total),
		zap.Int("resolved", res.Resolved),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("duration", res.Duration),
	)
	return nil
}

func (d *Driver[V]) resolveAll(ctx context.Context) (*PassResult, error) {
	res := &PassResult{}

	if err := LoadRegistry(ctx, d.adapter, d.reg); err != nil {
		return res, fmt.Errorf("%w: %w", ErrEnumerationFailure, err)
	}

	pending := d.reg.pending()
	res.Total = d.reg.Len()
	res.Skipped = res.Total - len(pending)
	for range res.Skipped {
		d.opts.Metrics.ObserveResolution(d.reg.Name(), metrics.OutcomeSkipped)
	}
	if len(pending) == 0 {
		d.logger.Warn("No entry references to resolve")
		return res, nil
	}

	refs := make([]Reference, len(pending))
	for i, p := range pending {
		refs[i] = p.ref
	}
	size, err := d.source.DownloadSize(ctx, refs)
	if err != nil {
		d.logger.Error("Failed to get download size", zap.Error(err))
	} else {
		res.Bytes = size
		d.logger.Info("Resolving references", zap.Int("references", len(refs)), zap.Int64("bytes", size))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)

	for _, p := range pending {
		g.Go(func() error {
			err := d.resolveOne(gctx, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				d.opts.Metrics.ObserveResolution(d.reg.Name(), metrics.OutcomeFailure)
				d.logger.Error("Failed to resolve entry",
					zap.Int("id", p.id),
					zap.String("reference", p.ref.String()),
					zap.String("filename", p.filename),
					zap.Error(err),
				)
				return nil
			}
			res.Resolved++
			d.opts.Metrics.ObserveResolution(d.reg.Name(), metrics.OutcomeSuccess)
			return nil
		})
	}

	// Tasks never return errors; Wait only joins them.
	_ = g.Wait()
	return res, nil
}

func (d *Driver[V]) resolveOne(ctx context.Context, p pendingEntry) error {
	value, err := d.source.Load(ctx, p.ref)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResolutionFailure, err)
	}
	if !d.reg.resolve(p.id, p.ref, value) {
		return fmt.Errorf("%w: entry %d changed during resolution", ErrResolutionFailure, p.id)
	}
	return nil
}
