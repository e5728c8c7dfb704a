package catalog

import (
	"path"
	"slices"
	"strings"

	"asset-registry/core/registry"
)

// Manifest is the catalog document stored in the bucket.
type Manifest struct {
	// Groups lists declared groups, including empty ones.
	Groups []string `json:"groups,omitempty"`
	// Labels is the set of labels the catalog knows about.
	Labels []string `json:"labels"`
	// Items lists every addressable asset in catalog order.
	Items []Item `json:"items"`
}

// Item is one addressable asset.
type Item struct {
	// GUID is the stable identity used as registry reference.
	GUID string `json:"guid"`
	// Address is the caller-visible name of the asset.
	Address string `json:"address"`
	// Path is the object key of the asset blob.
	Path string `json:"path"`
	// Group is the catalog group the asset belongs to.
	Group string `json:"group"`
	// Labels are the catalog labels of the asset.
	Labels []string `json:"labels"`
}

// Filename returns the base name of the asset blob.
func (i Item) Filename() string {
	return path.Base(strings.ReplaceAll(i.Path, "\\", "/"))
}

// HasLabels reports whether the item carries every label in labels.
func (i Item) HasLabels(labels ...string) bool {
	for _, l := range labels {
		if !slices.Contains(i.Labels, l) {
			return false
		}
	}
	return true
}

// Reference returns the registry reference of the item.
func (i Item) Reference() registry.Reference {
	return registry.Reference(i.GUID)
}

func (m *Manifest) clone() *Manifest {
	c := &Manifest{Groups: slices.Clone(m.Groups), Labels: slices.Clone(m.Labels), Items: make([]Item, len(m.Items))}
	for i, it := range m.Items {
		it.Labels = slices.Clone(it.Labels)
		c.Items[i] = it
	}
	return c
}

func (m *Manifest) find(guid string) int {
	return slices.IndexFunc(m.Items, func(it Item) bool { return it.GUID == guid })
}

func (m *Manifest) findPath(p string) int {
	return slices.IndexFunc(m.Items, func(it Item) bool { return it.Path == p })
}

// inGroup reports whether the item matches group. An empty group matches all.
func inGroup(it Item, group string) bool {
	return group == "" || it.Group == group
}
