package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// ReconcileWithPlan reconciles and plans actions without executing them.
func ReconcileWithPlan(ctx context.Context, spec *Spec, cache *Cache, opts Options) (*Plan, error) {
	var (
		snap *Snapshot
		err  error
	)
	if cache != nil {
		snap, err = cache.GetOrBuild(ctx, spec)
	} else {
		snap, err = BuildSnapshot(ctx, spec)
	}
	if err != nil {
		return nil, err
	}

	results := resultsFromSnapshot(snap, spec.Adapter)
	summary, actions := buildPlanFromResults(results, snap, opts)
	return &Plan{Results: results, Actions: actions, Summary: summary}, nil
}

// ApplyPlan executes plan through the adapter's Mutator. Nothing runs unless
// opts.Confirmed is set and opts.DryRun is not.
func ApplyPlan(ctx context.Context, spec *Spec, plan *Plan, opts Options) (executed int, err error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	var (
		dropKeys   []string
		unregister []string
		deleteKeys []string
		syncs      []Action
	)
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionDropEntry:
			dropKeys = append(dropKeys, action.Key)
		case ActionUnregister:
			unregister = append(unregister, action.Key)
		case ActionDeleteStorage:
			deleteKeys = append(deleteKeys, action.Key)
		case ActionSyncEntry:
			syncs = append(syncs, action)
		}
	}

	// Syncs run first; a key is never both synced and dropped.
	for _, action := range syncs {
		if err := mutator.SyncEntry(ctx, action.Key, action.Item); err != nil {
			return executed, fmt.Errorf("failed to sync %s: %w", action.Key, err)
		}
		executed++
	}

	if len(dropKeys) > 0 {
		if batch, ok := mutator.(EntryBatchDropper); ok {
			if err := batch.DropEntries(ctx, dropKeys); err != nil {
				return executed, fmt.Errorf("failed to batch drop entries: %w", err)
			}
			executed += len(dropKeys)
		} else {
			for _, key := range dropKeys {
				if err := mutator.DropEntry(ctx, key); err != nil {
					return executed, fmt.Errorf("failed to drop entry %s: %w", key, err)
				}
				executed++
			}
		}
	}

	for _, key := range unregister {
		if err := mutator.Unregister(ctx, key); err != nil {
			return executed, fmt.Errorf("failed to unregister %s: %w", key, err)
		}
		executed++
	}

	for _, key := range deleteKeys {
		if err := mutator.DeleteStorage(ctx, key); err != nil {
			return executed, fmt.Errorf("failed to delete storage object %s: %w", key, err)
		}
		executed++
	}

	return executed, nil
}

// ReconcileAndApply plans and, when confirmed, applies.
func ReconcileAndApply(ctx context.Context, spec *Spec, cache *Cache, opts Options) (*Plan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, cache, opts)
	if err != nil {
		return nil, 0, err
	}

	executed, err := ApplyPlan(ctx, spec, plan, opts)
	if executed > 0 && cache != nil {
		cache.Invalidate(spec)
	}
	return plan, executed, err
}

func buildPlanFromResults(results []Result, snap *Snapshot, opts Options) (PlanSummary, []Action) {
	var summary PlanSummary
	var actions []Action

	summary.TotalItems = len(results)

	for _, r := range results {
		switch {
		case r.Orphan():
			summary.Orphans++
		case r.RecordPresent && !r.CatalogPresent:
			summary.BrokenReferences++
		case r.CatalogPresent && !r.RecordPresent:
			summary.NotImported++
		}
		if r.CatalogPresent && !r.StoragePresent {
			summary.MissingStorage++
		}
		if len(r.Mismatch) > 0 {
			summary.Mismatches++
		}

		if opts.DoPurge {
			purge := purgeActions(r)
			if len(purge) > 0 {
				actions = append(actions, purge...)
				summary.PurgeActions += len(purge)
				continue
			}
		}

		if opts.DoSync && r.RecordPresent && r.CatalogPresent && len(r.Mismatch) > 0 {
			actions = append(actions, Action{
				Type:   ActionSyncEntry,
				Key:    r.ID,
				Reason: "mismatch: " + strings.Join(r.Mismatch, "; "),
				Item:   snap.CatalogIndex[r.ID],
			})
			summary.SyncActions++
		}
	}

	return summary, actions
}

// purgeActions returns the removals planned for r. Entries whose asset is
// gone are dropped; catalog items without a blob are unregistered; orphan
// blobs are deleted.
func purgeActions(r Result) []Action {
	var out []Action
	switch {
	case r.Orphan():
		out = append(out, Action{Type: ActionDeleteStorage, Key: r.ID, Reason: "blob not referenced by catalog or registry"})
	case r.CatalogPresent && !r.StoragePresent:
		out = append(out, Action{Type: ActionUnregister, Key: r.ID, Reason: missingReason(r)})
		if r.RecordPresent {
			out = append(out, Action{Type: ActionDropEntry, Key: r.ID, Reason: missingReason(r)})
		}
	case r.RecordPresent && !r.CatalogPresent:
		out = append(out, Action{Type: ActionDropEntry, Key: r.ID, Reason: missingReason(r)})
	}
	return out
}

func missingReason(r Result) string {
	var missing []string
	if !r.RecordPresent {
		missing = append(missing, "record")
	}
	if !r.CatalogPresent {
		missing = append(missing, "catalog")
	}
	if !r.StoragePresent {
		missing = append(missing, "storage")
	}
	if len(missing) == 0 {
		return "complete"
	}
	return fmt.Sprintf("missing in: %v", missing)
}
