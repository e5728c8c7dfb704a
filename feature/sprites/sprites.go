package sprites

import (
	"asset-registry/core/registry"
	"asset-registry/feature/catalog"
)

const (
	// DefaultID holds the sprite shown when nothing else matches.
	DefaultID = 0
	// DefaultPortraitID holds the portrait shown for ids without one.
	DefaultPortraitID = 3000
)

// Sprites is the sprite registry, keyed by sprite id and resolved from the catalog.
type Sprites struct {
	reg *registry.Registry[*catalog.Asset]
}

// Wrap exposes reg through the sprite lookups.
func Wrap(reg *registry.Registry[*catalog.Asset]) *Sprites {
	return &Sprites{reg: reg}
}

// Registry returns the underlying registry.
func (s *Sprites) Registry() *registry.Registry[*catalog.Asset] {
	return s.reg
}

// Default returns the default sprite, or nil if it is not resolved.
func (s *Sprites) Default() *catalog.Asset {
	return s.reg.GetOr(DefaultID, nil)
}

// Sprite returns the sprite for id, falling back to the default sprite.
func (s *Sprites) Sprite(id int) *catalog.Asset {
	return s.reg.GetOrFallback(id, DefaultID)
}

// Portrait returns the portrait for id, falling back to the default portrait.
func (s *Sprites) Portrait(id int) *catalog.Asset {
	return s.reg.GetOrFallback(id, DefaultPortraitID)
}

// IDOf returns the sprite id holding asset.
func (s *Sprites) IDOf(asset *catalog.Asset) (int, error) {
	return s.reg.KeyOf(asset)
}
