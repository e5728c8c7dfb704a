package catalog

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"asset-registry/core/registry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Placement moves one asset into a group with an exact label set.
type Placement struct {
	Reference registry.Reference
	Labels    []string
}

// Candidates lists every item of group as a reference repair candidate.
func (r *Resolver) Candidates(ctx context.Context, group string) ([]registry.ResolverEntry, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return nil, err
	}
	var out []registry.ResolverEntry
	for _, it := range m.Items {
		if inGroup(it, group) {
			out = append(out, registry.ResolverEntry{Reference: it.Reference(), Path: it.Path})
		}
	}
	return out, nil
}

// Groups returns the declared and used group names, sorted.
func (r *Resolver) Groups(ctx context.Context) ([]string, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, g := range m.Groups {
		set[g] = struct{}{}
	}
	for _, it := range m.Items {
		set[it.Group] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

// Addresses returns the addresses of every item in group, in catalog order.
func (r *Resolver) Addresses(ctx context.Context, group string) ([]string, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, it := range m.Items {
		if inGroup(it, group) {
			out = append(out, it.Address)
		}
	}
	return out, nil
}

// Register adds the blob at objectPath to the catalog under a new GUID. The
// address starts out as the path.
func (r *Resolver) Register(ctx context.Context, objectPath, group string, labels []string) (Item, error) {
	var created Item
	err := r.update(ctx, func(m *Manifest) error {
		if i := m.findPath(objectPath); i >= 0 {
			return fmt.Errorf("%w: %s as %s", ErrAlreadyRegistered, objectPath, m.Items[i].GUID)
		}
		if group != "" && !slices.Contains(m.Groups, group) {
			m.Groups = append(m.Groups, group)
		}
		for _, l := range labels {
			if !slices.Contains(m.Labels, l) {
				m.Labels = append(m.Labels, l)
			}
		}
		created = Item{
			GUID:    uuid.NewString(),
			Address: objectPath,
			Path:    objectPath,
			Group:   group,
			Labels:  slices.Clone(labels),
		}
		m.Items = append(m.Items, created)
		return nil
	})
	if err != nil {
		return Item{}, err
	}

	r.logger.Info("Registered catalog asset", zap.String("guid", created.GUID), zap.String("path", objectPath), zap.String("group", group))
	return created, nil
}

// Unregister removes ref from the catalog. The blob is left in place.
func (r *Resolver) Unregister(ctx context.Context, ref registry.Reference) error {
	return r.update(ctx, func(m *Manifest) error {
		i := m.find(ref.String())
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
		}
		m.Items = slices.Delete(m.Items, i, i+1)
		return nil
	})
}

// ResetAddresses sets every address in group back to the item's path.
func (r *Resolver) ResetAddresses(ctx context.Context, group string) (int, error) {
	changed := 0
	err := r.update(ctx, func(m *Manifest) error {
		for i := range m.Items {
			if !inGroup(m.Items[i], group) || m.Items[i].Address == m.Items[i].Path {
				continue
			}
			m.Items[i].Address = m.Items[i].Path
			changed++
		}
		return nil
	})
	return changed, err
}

// SaveEntries moves each placed asset into group, resets its address to its
// path and overwrites its labels with the placement labels the catalog knows.
// Unknown references are skipped and counted.
func (r *Resolver) SaveEntries(ctx context.Context, group string, placements []Placement) (saved, skipped int, err error) {
	err = r.update(ctx, func(m *Manifest) error {
		if group != "" && !slices.Contains(m.Groups, group) {
			m.Groups = append(m.Groups, group)
		}
		for _, p := range placements {
			if p.Reference.IsZero() {
				skipped++
				continue
			}
			i := m.find(p.Reference.String())
			if i < 0 {
				r.logger.Error("Failed to save entry, reference not in catalog", zap.String("reference", p.Reference.String()))
				skipped++
				continue
			}

			it := &m.Items[i]
			it.Group = group
			it.Address = it.Path
			it.Labels = it.Labels[:0]
			for _, l := range p.Labels {
				if slices.Contains(m.Labels, l) {
					it.Labels = append(it.Labels, l)
				}
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	r.logger.Info("Saved entries to catalog group", zap.String("group", group), zap.Int("saved", saved), zap.Int("skipped", skipped))
	return saved, skipped, nil
}

// AddLabel declares label in the catalog. Declaring a known label is a no-op.
func (r *Resolver) AddLabel(ctx context.Context, label string) error {
	return r.update(ctx, func(m *Manifest) error {
		if !slices.Contains(m.Labels, label) {
			m.Labels = append(m.Labels, label)
		}
		return nil
	})
}

// RemoveLabels undeclares labels and strips them from every item.
func (r *Resolver) RemoveLabels(ctx context.Context, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	return r.update(ctx, func(m *Manifest) error {
		drop := func(l string) bool { return slices.Contains(labels, l) }
		m.Labels = slices.DeleteFunc(m.Labels, drop)
		for i := range m.Items {
			m.Items[i].Labels = slices.DeleteFunc(m.Items[i].Labels, drop)
		}
		return nil
	})
}
