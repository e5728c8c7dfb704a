package registry

import "slices"

// Reference is the resolver-understood identity of an external asset.
// The registry never interprets it; an empty Reference means "no asset".
type Reference string

// String returns the identity string written to flat records.
func (r Reference) String() string {
	return string(r)
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r == ""
}

// Entry is one registry row.
type Entry[V any] struct {
	// ID is the registry key. Stable once assigned.
	ID int
	// Reference points at the underlying asset.
	Reference Reference
	// Value is the resolved asset. Only meaningful when Resolved is true.
	Value V
	// Resolved is set once Value has been materialized by an AssetResolver.
	Resolved bool
	// Filename is advisory and never used as identity, except by reference repair.
	Filename string
	// Labels should be a subset of the registry's label table.
	Labels []string
}

// HasLabel reports whether the entry carries label.
func (e *Entry[V]) HasLabel(label string) bool {
	return slices.Contains(e.Labels, label)
}

// clone returns a copy that shares no slice storage with e.
func (e *Entry[V]) clone() *Entry[V] {
	c := *e
	c.Labels = slices.Clone(e.Labels)
	return &c
}

// unresolve drops the resolved value, keeping the persisted fields.
func (e *Entry[V]) unresolve() {
	var zero V
	e.Value = zero
	e.Resolved = false
}
