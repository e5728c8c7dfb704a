// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface. The registry
// tooling keeps its asset catalog manifest, the asset blobs and optionally the
// persisted registry records in one bucket.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: creates the target bucket when missing.
//   - ReadObject: downloads a whole object, mapping missing keys to ErrObjectNotFound.
//   - WriteObject: uploads a byte slice with a content type.
//   - IsNotFound: recognises NoSuchKey style responses.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.ReadObject(ctx, client, cfg.Storage.Bucket, "catalog/catalog.json")
package storage
