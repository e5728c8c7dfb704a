package registry

import (
	"fmt"

	"go.uber.org/zap"
)

// NextFreeID returns the first unoccupied id at or above the label's starting
// index. The label must exist and be displayed.
func (r *Registry[V]) NextFreeID(label string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return -1, ErrNotInitialized
	}
	start, err := r.selectedStart(label)
	if err != nil {
		return -1, err
	}
	return r.nextFree(start), nil
}

// AddEntry allocates an id in label and inserts an empty entry tagged with it.
func (r *Registry[V]) AddEntry(label string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		return -1, ErrNotInitialized
	}
	start, err := r.selectedStart(label)
	if err != nil {
		return -1, err
	}

	id := r.nextFree(start)
	r.entries[id] = &Entry[V]{ID: id, Labels: []string{label}}
	r.logger.Debug("Added entry", zap.Int("id", id), zap.String("label", label))
	return id, nil
}

func (r *Registry[V]) selectedStart(label string) (int, error) {
	start, err := r.labels.StartingIndex(label)
	if err != nil {
		return -1, err
	}
	if !r.labels.Scope(label, ScopeDisplay) {
		return -1, fmt.Errorf("%w: %s", ErrLabelNotSelected, label)
	}
	return start, nil
}

// nextFree scans forward from start. Must be called with r.mu held.
func (r *Registry[V]) nextFree(start int) int {
	id := start
	for {
		if _, taken := r.entries[id]; !taken {
			return id
		}
		id++
	}
}
