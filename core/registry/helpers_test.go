package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newLoaded builds a loaded registry whose labels are all displayed.
func newLoaded(t *testing.T, starts ...LabelStart) *Registry[string] {
	t.Helper()
	labels := NewLabelTable("test", nil)
	labels.Load(starts)
	reg := New[string]("test", labels, nil)
	reg.replace(make(map[int]*Entry[string]), "")
	return reg
}

// memStore is an in-memory PersistentStore.
type memStore struct {
	mu      sync.Mutex
	records map[string]*Record
	loadErr error
	saves   int
}

func newMemStore(records ...*Record) *memStore {
	s := &memStore{records: make(map[string]*Record)}
	for _, r := range records {
		s.records[r.Type] = r
	}
	return s
}

func (s *memStore) Load(ctx context.Context, typeName string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rec, ok := s.records[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, typeName)
	}
	return copyRecord(rec), nil
}

func (s *memStore) Create(ctx context.Context, typeName string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := NewRecord(typeName)
	s.records[typeName] = rec
	return copyRecord(rec), nil
}

func (s *memStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Type] = copyRecord(rec)
	s.saves++
	return nil
}

func copyRecord(r *Record) *Record {
	return &Record{
		Type:    r.Type,
		Group:   r.Group,
		Labels:  slices.Clone(r.Labels),
		Entries: maps.Clone(r.Entries),
	}
}

// fakeResolver resolves a reference to "value:<ref>" and fails for refs in fail.
type fakeResolver struct {
	mu         sync.Mutex
	fail       map[Reference]bool
	candidates map[string][]Candidate
	enumErr    error
	sizeErr    error
	addresses  map[Reference]string
	addrErr    map[Reference]error
	delay      time.Duration
	loads      atomic.Int32
	inFlight   atomic.Int32
	maxFlight  atomic.Int32
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		fail:       make(map[Reference]bool),
		candidates: make(map[string][]Candidate),
		addresses:  make(map[Reference]string),
		addrErr:    make(map[Reference]error),
	}
}

func (f *fakeResolver) EnumerateByLabel(ctx context.Context, label, group string) ([]Candidate, error) {
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	return f.candidates[label], nil
}

func (f *fakeResolver) Load(ctx context.Context, ref Reference) (string, error) {
	f.loads.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[ref] {
		return "", fmt.Errorf("load %s failed", ref)
	}
	return "value:" + ref.String(), nil
}

func (f *fakeResolver) DownloadSize(ctx context.Context, refs []Reference) (int64, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	return int64(len(refs) * 100), nil
}

func (f *fakeResolver) SetAddress(ctx context.Context, ref Reference, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.addrErr[ref]; err != nil {
		return err
	}
	f.addresses[ref] = address
	return nil
}
