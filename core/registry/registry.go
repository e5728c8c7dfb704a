package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"asset-registry/core/logger"

	"go.uber.org/zap"
)

// Registry owns every Entry of one registry type, keyed by id.
//
// Steady-state reads are safe from any goroutine. Multi-step mutations
// (allocation, import, relabel) follow a single-writer discipline: callers must
// not run them concurrently with each other or with an initialize pass.
type Registry[V comparable] struct {
	name   string
	labels *LabelTable
	logger *zap.Logger
	gate   *Gate

	mu      sync.RWMutex
	entries map[int]*Entry[V]
	group   string
	loaded  bool
}

// New creates an empty, unloaded registry. A nil label table gets an in-memory one.
func New[V comparable](name string, labels *LabelTable, log *zap.Logger) *Registry[V] {
	if labels == nil {
		labels = NewLabelTable(name, nil)
	}
	return &Registry[V]{
		name:    name,
		labels:  labels,
		logger:  logger.ForRegistry(log, name),
		gate:    NewGate(name),
		entries: make(map[int]*Entry[V]),
	}
}

// Name returns the registry type name, also the persisted record name.
func (r *Registry[V]) Name() string {
	return r.name
}

// Labels returns the label table.
func (r *Registry[V]) Labels() *LabelTable {
	return r.labels
}

// Gate returns the initialize gate of this registry.
func (r *Registry[V]) Gate() *Gate {
	return r.gate
}

// State returns the initialize state.
func (r *Registry[V]) State() State {
	return r.gate.State()
}

// Group returns the resolver group name.
func (r *Registry[V]) Group() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.group
}

// SetGroup changes the resolver group name.
func (r *Registry[V]) SetGroup(group string) {
	r.mu.Lock()
	r.group = group
	r.mu.Unlock()
}

// Loaded reports whether records have been loaded at least once.
func (r *Registry[V]) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Len returns the number of entries.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Contains reports whether id is present.
func (r *Registry[V]) Contains(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Get returns the resolved value for id. ok is false when the id is missing,
// unresolved, or the registry was never loaded.
func (r *Registry[V]) Get(id int) (V, bool) {
	var zero V

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		r.logger.Error("Registry is not initialized", zap.Int("id", id))
		return zero, false
	}
	if id < 0 {
		return zero, false
	}
	e, ok := r.entries[id]
	if !ok || !e.Resolved {
		return zero, false
	}
	return e.Value, true
}

// GetOr returns the resolved value for id, or def.
func (r *Registry[V]) GetOr(id int, def V) V {
	if v, ok := r.Get(id); ok {
		return v
	}
	return def
}

// GetOrFallback returns the resolved value for id, or the value stored at fallbackID.
func (r *Registry[V]) GetOrFallback(id, fallbackID int) V {
	if v, ok := r.Get(id); ok {
		return v
	}
	v, _ := r.Get(fallbackID)
	return v
}

// KeyOf returns the id whose resolved value equals value. Ties resolve to the lowest id.
func (r *Registry[V]) KeyOf(value V) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return -1, ErrNotInitialized
	}
	for _, id := range r.sortedIDs() {
		e := r.entries[id]
		if e.Resolved && e.Value == value {
			return id, nil
		}
	}
	return -1, fmt.Errorf("%w: %v", ErrReferenceNotFound, value)
}

// Entry returns a copy of the entry at id.
func (r *Registry[V]) Entry(id int) (*Entry[V], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Entries returns copies of all entries sorted by id.
func (r *Registry[V]) Entries() []*Entry[V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry[V], 0, len(r.entries))
	for _, id := range r.sortedIDs() {
		out = append(out, r.entries[id].clone())
	}
	return out
}

// IDs returns all ids in ascending order.
func (r *Registry[V]) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs()
}

// Set inserts or replaces the entry at id.
func (r *Registry[V]) Set(id int, e *Entry[V]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return ErrNotInitialized
	}
	if err := Validate(e); err != nil {
		return err
	}
	c := e.clone()
	c.ID = id
	r.entries[id] = c
	return nil
}

// SetReference re-points the entry at id. A changed reference drops the resolved value.
func (r *Registry[V]) SetReference(id int, ref Reference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return ErrNotInitialized
	}
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	if strings.Contains(ref.String(), FieldSeparator) {
		return fmt.Errorf("%w: reference %q contains %q", ErrUnencodable, ref, FieldSeparator)
	}
	if e.Reference != ref {
		e.Reference = ref
		e.unresolve()
	}
	return nil
}

// Remove deletes the entry at id.
func (r *Registry[V]) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return ErrNotInitialized
	}
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	delete(r.entries, id)
	return nil
}

// Anomaly is an entry label missing from the label table.
type Anomaly struct {
	ID    int
	Label string
}

// Anomalies lists entry labels unknown to the label table. They are tolerated,
// never rejected at insert time.
func (r *Registry[V]) Anomalies() []Anomaly {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Anomaly
	for _, id := range r.sortedIDs() {
		for _, l := range r.entries[id].Labels {
			if !r.labels.Has(l) {
				out = append(out, Anomaly{ID: id, Label: l})
			}
		}
	}
	return out
}

// replace swaps in a freshly decoded entry set and marks the registry loaded.
func (r *Registry[V]) replace(entries map[int]*Entry[V], group string) {
	r.mu.Lock()
	r.entries = entries
	r.group = group
	r.loaded = true
	r.mu.Unlock()
}

// resolve stores a resolved value if the entry still points at ref.
func (r *Registry[V]) resolve(id int, ref Reference, value V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.Reference != ref {
		return false
	}
	e.Value = value
	e.Resolved = true
	return true
}

// pending returns the ids and references of every entry with a reference.
func (r *Registry[V]) pending() []pendingEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []pendingEntry
	for _, id := range r.sortedIDs() {
		e := r.entries[id]
		if e.Reference.IsZero() {
			continue
		}
		out = append(out, pendingEntry{id: id, ref: e.Reference, filename: e.Filename})
	}
	return out
}

type pendingEntry struct {
	id       int
	ref      Reference
	filename string
}

// sortedIDs must be called with r.mu held.
func (r *Registry[V]) sortedIDs() []int {
	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
