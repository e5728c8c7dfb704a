package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"asset-registry/core/registry"
	"asset-registry/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
)

// Asset is a resolved catalog asset.
type Asset struct {
	Ref  registry.Reference
	Path string
	Data []byte
}

var _ registry.AssetResolver[*Asset] = (*Resolver)(nil)

// EnumerateByLabel lists the items carrying label, in catalog order. Index is
// the item's position within the filtered catalog view.
func (r *Resolver) EnumerateByLabel(ctx context.Context, label, group string) ([]registry.Candidate, error) {
	return r.EnumerateByLabels(ctx, []string{label}, group)
}

// EnumerateByLabels lists the items carrying every label in labels. No labels
// matches every item of the group.
func (r *Resolver) EnumerateByLabels(ctx context.Context, labels []string, group string) ([]registry.Candidate, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return nil, err
	}
	if group != "" && !hasGroup(m, group) {
		return nil, fmt.Errorf("catalog group %q not found", group)
	}

	var out []registry.Candidate
	index := 0
	for _, it := range m.Items {
		if !inGroup(it, group) {
			continue
		}
		if it.HasLabels(labels...) {
			out = append(out, registry.Candidate{Index: index, Reference: it.Reference(), Filename: it.Filename()})
		}
		index++
	}
	return out, nil
}

// Load downloads the blob behind ref.
func (r *Resolver) Load(ctx context.Context, ref registry.Reference) (*Asset, error) {
	it, err := r.Item(ctx, ref)
	if err != nil {
		return nil, err
	}
	data, err := storage.ReadObject(ctx, r.client, r.bucket, it.Path)
	if err != nil {
		return nil, err
	}
	return &Asset{Ref: ref, Path: it.Path, Data: data}, nil
}

// DownloadSize sums the blob sizes of refs.
func (r *Resolver) DownloadSize(ctx context.Context, refs []registry.Reference) (int64, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return 0, err
	}

	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		i := m.find(ref.String())
		if i < 0 {
			return 0, fmt.Errorf("%w: %s", ErrUnknownReference, ref)
		}
		paths = append(paths, m.Items[i].Path)
	}

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.StatConcurrency)
	for _, p := range paths {
		g.Go(func() error {
			info, err := r.client.StatObject(gctx, r.bucket, p, minio.StatObjectOptions{})
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", p, err)
			}
			total.Add(info.Size)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// SetAddress renames the address of ref.
func (r *Resolver) SetAddress(ctx context.Context, ref registry.Reference, address string) error {
	return r.update(ctx, func(m *Manifest) error {
		i := m.find(ref.String())
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownReference, ref)
		}
		m.Items[i].Address = address
		return nil
	})
}

// Item returns the catalog item for ref.
func (r *Resolver) Item(ctx context.Context, ref registry.Reference) (Item, error) {
	m, err := r.manifest(ctx)
	if err != nil {
		return Item{}, err
	}
	i := m.find(ref.String())
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	it := m.Items[i]
	it.Labels = slices.Clone(it.Labels)
	return it, nil
}

func hasGroup(m *Manifest, group string) bool {
	if slices.Contains(m.Groups, group) {
		return true
	}
	return slices.ContainsFunc(m.Items, func(it Item) bool { return it.Group == group })
}
