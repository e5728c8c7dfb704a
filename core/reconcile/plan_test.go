package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionKeys(actions []Action, typ ActionType) []string {
	var out []string
	for _, a := range actions {
		if a.Type == typ {
			out = append(out, a.Key)
		}
	}
	return out
}

func TestReconcileWithPlan_Summary(t *testing.T) {
	plan, err := ReconcileWithPlan(context.Background(), &Spec{Adapter: fixtureAdapter()}, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, PlanSummary{
		TotalItems:       6,
		NotImported:      1,
		BrokenReferences: 1,
		MissingStorage:   1,
		Orphans:          1,
		Mismatches:       1,
	}, plan.Summary)
	assert.Empty(t, plan.Actions, "no actions without purge or sync")
}

func TestReconcileWithPlan_Actions(t *testing.T) {
	plan, err := ReconcileWithPlan(context.Background(), &Spec{Adapter: fixtureAdapter()}, nil, Options{DoPurge: true, DoSync: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"broken", "noblob"}, actionKeys(plan.Actions, ActionDropEntry))
	assert.Equal(t, []string{"noblob"}, actionKeys(plan.Actions, ActionUnregister))
	assert.Equal(t, []string{"sprites/orphan.png"}, actionKeys(plan.Actions, ActionDeleteStorage))
	assert.Equal(t, []string{"renamed"}, actionKeys(plan.Actions, ActionSyncEntry))
	assert.Equal(t, 4, plan.Summary.PurgeActions)
	assert.Equal(t, 1, plan.Summary.SyncActions)

	for _, a := range plan.Actions {
		if a.Type == ActionSyncEntry {
			assert.Equal(t, catItem{"new.png"}, a.Item)
			assert.Contains(t, a.Reason, "filename")
		}
		if a.Key == "broken" {
			assert.Equal(t, "missing in: [catalog storage]", a.Reason)
		}
	}
}

func TestApplyPlan(t *testing.T) {
	ctx := context.Background()
	opts := Options{DoPurge: true, DoSync: true}

	t.Run("requires confirmation", func(t *testing.T) {
		adapter := fixtureAdapter()
		spec := &Spec{Adapter: adapter}
		plan, err := ReconcileWithPlan(ctx, spec, nil, opts)
		require.NoError(t, err)

		n, err := ApplyPlan(ctx, spec, plan, opts)
		require.NoError(t, err)
		assert.Zero(t, n)

		dry := opts
		dry.Confirmed, dry.DryRun = true, true
		n, err = ApplyPlan(ctx, spec, plan, dry)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, adapter.dropped)
	})

	t.Run("confirmed", func(t *testing.T) {
		adapter := fixtureAdapter()
		spec := &Spec{Adapter: adapter}
		confirmed := opts
		confirmed.Confirmed = true

		plan, err := ReconcileWithPlan(ctx, spec, nil, confirmed)
		require.NoError(t, err)
		n, err := ApplyPlan(ctx, spec, plan, confirmed)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, []string{"renamed"}, adapter.synced)
		assert.ElementsMatch(t, []string{"broken", "noblob"}, adapter.dropped)
		assert.Equal(t, []string{"noblob"}, adapter.unreg)
		assert.Equal(t, []string{"sprites/orphan.png"}, adapter.deleted)
	})

	t.Run("stops on first failure", func(t *testing.T) {
		adapter := fixtureAdapter()
		adapter.failSyncOn = "renamed"
		spec := &Spec{Adapter: adapter}
		confirmed := opts
		confirmed.Confirmed = true

		plan, err := ReconcileWithPlan(ctx, spec, nil, confirmed)
		require.NoError(t, err)
		n, err := ApplyPlan(ctx, spec, plan, confirmed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync refused")
		assert.Zero(t, n)
		assert.Empty(t, adapter.dropped)
	})

	t.Run("adapter without mutator", func(t *testing.T) {
		spec := &Spec{Adapter: readOnlyAdapter{fixtureAdapter()}}
		plan, err := ReconcileWithPlan(ctx, spec, nil, opts)
		require.NoError(t, err)

		_, err = ApplyPlan(ctx, spec, plan, Options{Confirmed: true})
		assert.ErrorContains(t, err, "does not implement Mutator")
	})
}

type batchAdapter struct {
	*mockAdapter
	batches [][]string
}

func (b *batchAdapter) DropEntries(ctx context.Context, keys []string) error {
	b.batches = append(b.batches, keys)
	return nil
}

func TestApplyPlan_BatchDrop(t *testing.T) {
	ctx := context.Background()
	adapter := &batchAdapter{mockAdapter: fixtureAdapter()}
	spec := &Spec{Adapter: adapter}
	opts := Options{DoPurge: true, Confirmed: true}

	plan, err := ReconcileWithPlan(ctx, spec, nil, opts)
	require.NoError(t, err)
	n, err := ApplyPlan(ctx, spec, plan, opts)
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	require.Len(t, adapter.batches, 1)
	assert.ElementsMatch(t, []string{"broken", "noblob"}, adapter.batches[0])
	assert.Empty(t, adapter.dropped, "single-key path unused")
}

func TestReconcileAndApply_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	adapter := fixtureAdapter()
	spec := &Spec{Adapter: adapter, CacheTTL: time.Minute}
	cache := NewCache()

	_, n, err := ReconcileAndApply(ctx, spec, cache, Options{DoPurge: true, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ReconcileOne(ctx, spec, cache, "ok")
	require.NoError(t, err)
	assert.Equal(t, int32(2), adapter.loads.Load(), "applied plan forces a rebuild")
}

// readOnlyAdapter hides the Mutator methods of the wrapped adapter.
type readOnlyAdapter struct {
	m *mockAdapter
}

func (r readOnlyAdapter) Name() string { return r.m.Name() }

func (r readOnlyAdapter) LoadRecordIndex(ctx context.Context) (map[string]RecordItem, error) {
	return r.m.LoadRecordIndex(ctx)
}

func (r readOnlyAdapter) LoadCatalogIndex(ctx context.Context) (map[string]CatalogItem, error) {
	return r.m.LoadCatalogIndex(ctx)
}

func (r readOnlyAdapter) LoadStorageSet(ctx context.Context, prefix string) (map[string]struct{}, error) {
	return r.m.LoadStorageSet(ctx, prefix)
}

func (r readOnlyAdapter) ResolveName(rec RecordItem, cat CatalogItem) string {
	return r.m.ResolveName(rec, cat)
}

func (r readOnlyAdapter) CompareFields(rec RecordItem, cat CatalogItem) []string {
	return r.m.CompareFields(rec, cat)
}

func (r readOnlyAdapter) GetMetadata(rec RecordItem, cat CatalogItem) map[string]string {
	return r.m.GetMetadata(rec, cat)
}
