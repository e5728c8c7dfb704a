package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"asset-registry/core/utils"

	"go.uber.org/zap"
)

// Record is the persisted form of one registry type.
type Record struct {
	// Type is the registry type name the record belongs to.
	Type string `json:"type"`
	// Group is the resolver group the registry imports from.
	Group string `json:"group"`
	// Labels is the ordered label table.
	Labels []LabelStart `json:"labels"`
	// Entries maps decimal ids to encoded entries.
	Entries map[string]string `json:"entries"`
}

// NewRecord creates an empty record for typeName.
func NewRecord(typeName string) *Record {
	return &Record{Type: typeName, Entries: make(map[string]string)}
}

// SortedKeys returns the entry keys ordered by numeric id.
func (r *Record) SortedKeys() []string {
	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// PersistentStore is the host object store holding one Record per registry type.
type PersistentStore interface {
	// Load returns the record for typeName, or ErrRecordNotFound.
	Load(ctx context.Context, typeName string) (*Record, error)
	// Create stores and returns an empty record for typeName.
	Create(ctx context.Context, typeName string) (*Record, error)
	// Save overwrites the record. Last writer wins.
	Save(ctx context.Context, rec *Record) error
}

// Adapter moves registries between memory and a PersistentStore.
type Adapter struct {
	store  PersistentStore
	logger *zap.Logger
}

// NewAdapter creates an adapter over store.
func NewAdapter(store PersistentStore, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: store, logger: logger}
}

// Ensure loads the record for typeName, creating an empty one if absent.
func (a *Adapter) Ensure(ctx context.Context, typeName string) (*Record, error) {
	rec, err := a.store.Load(ctx, typeName)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	a.logger.Info("Persisted record missing, creating", zap.String("registry", typeName))
	return a.store.Create(ctx, typeName)
}

// Raw loads the undecoded record for typeName.
func (a *Adapter) Raw(ctx context.Context, typeName string) (*Record, error) {
	return a.store.Load(ctx, typeName)
}

// SaveRaw writes a record without going through a registry.
func (a *Adapter) SaveRaw(ctx context.Context, rec *Record) error {
	return a.store.Save(ctx, rec)
}

// RemoveEntry deletes one id straight from the persisted record of typeName.
// It reports whether the id was present.
func (a *Adapter) RemoveEntry(ctx context.Context, typeName string, id int) (bool, error) {
	rec, err := a.store.Load(ctx, typeName)
	if err != nil {
		return false, err
	}
	key := utils.FormatID(id)
	if _, ok := rec.Entries[key]; !ok {
		return false, nil
	}
	delete(rec.Entries, key)
	if err := a.store.Save(ctx, rec); err != nil {
		return false, err
	}

	a.logger.Info("Removed persisted entry", zap.String("registry", typeName), zap.Int("id", id))
	return true, nil
}

// DecodeRecord decodes every flat entry of rec. Any malformed key or value
// fails the whole record.
func DecodeRecord[V any](rec *Record) (map[int]*Entry[V], error) {
	entries := make(map[int]*Entry[V], len(rec.Entries))
	for key, value := range rec.Entries {
		id, err := utils.ParseID(key)
		if err != nil {
			return nil, &DecodeError{Key: key, Reason: err.Error()}
		}

		e, err := Decode[V](value)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Key = key
			}
			return nil, err
		}
		e.ID = id
		entries[id] = e
	}
	return entries, nil
}

// EncodeRecord renders a registry as a Record. Any entry that would not decode
// back fails the whole record.
func EncodeRecord[V comparable](reg *Registry[V]) (*Record, error) {
	rec := NewRecord(reg.Name())
	rec.Group = reg.Group()
	rec.Labels = reg.Labels().Starts()
	for _, e := range reg.Entries() {
		value, err := Encode(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", e.ID, err)
		}
		rec.Entries[utils.FormatID(e.ID)] = value
	}
	return rec, nil
}

// LoadRegistry reads the persisted record of reg and swaps it in. On any error
// the registry and its label table are left untouched.
func LoadRegistry[V comparable](ctx context.Context, a *Adapter, reg *Registry[V]) error {
	rec, err := a.store.Load(ctx, reg.Name())
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", reg.Name(), err)
	}

	entries, err := DecodeRecord[V](rec)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", reg.Name(), err)
	}

	reg.Labels().Load(rec.Labels)
	reg.replace(entries, rec.Group)

	a.logger.Info("Loaded registry records",
		zap.String("registry", reg.Name()),
		zap.Int("entries", len(entries)),
		zap.Int("labels", len(rec.Labels)),
	)
	return nil
}

// SaveRegistry re-encodes reg and overwrites its persisted record. Ids no longer
// in the registry disappear from the record.
func SaveRegistry[V comparable](ctx context.Context, a *Adapter, reg *Registry[V]) error {
	if !reg.Loaded() {
		return ErrNotInitialized
	}
	rec, err := EncodeRecord(reg)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", reg.Name(), err)
	}
	if err := a.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save %s: %w", reg.Name(), err)
	}

	a.logger.Info("Saved registry records", zap.String("registry", reg.Name()), zap.Int("entries", len(rec.Entries)))
	return nil
}

// sortKeys orders keys numerically, falling back to string order for non-numeric keys.
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return keys[i] < keys[j]
	})
}
