package registry

import "context"

// Candidate is one asset returned by label enumeration.
type Candidate struct {
	// Index is the resolver's own ordering of the asset within the listing.
	Index int
	// Reference identifies the asset.
	Reference Reference
	// Filename is the asset's advisory name, copied onto imported entries.
	Filename string
}

// ResolverEntry is a current resolver asset offered to reference repair.
type ResolverEntry struct {
	Reference Reference
	// Path is the resolver-side location; only its base name is compared.
	Path string
}

// Enumerator lists assets carrying a label. An empty group means every group.
type Enumerator interface {
	EnumerateByLabel(ctx context.Context, label, group string) ([]Candidate, error)
}

// Loader materializes the asset behind a reference.
type Loader[V any] interface {
	Load(ctx context.Context, ref Reference) (V, error)
}

// Sizer estimates the bytes needed to resolve a set of references.
type Sizer interface {
	DownloadSize(ctx context.Context, refs []Reference) (int64, error)
}

// Addresser renames the resolver-visible address of an asset.
type Addresser interface {
	SetAddress(ctx context.Context, ref Reference, address string) error
}

// AssetResolver is the full host asset-resolution service.
type AssetResolver[V any] interface {
	Enumerator
	Loader[V]
	Sizer
	Addresser
}
