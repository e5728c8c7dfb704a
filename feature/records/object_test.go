package records

import (
	"context"
	"testing"

	"asset-registry/core/registry"
	"asset-registry/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStore(t *testing.T) {
	ctx := context.Background()
	bucket := mocks.NewBucket()
	store := NewObjectStore(bucket, "assets", "registry", nil)

	assert.Equal(t, "registry/sprites.json", store.Key("sprites"))

	_, err := store.Load(ctx, "sprites")
	assert.ErrorIs(t, err, registry.ErrRecordNotFound)

	_, err = store.Create(ctx, "sprites")
	require.NoError(t, err)
	_, ok := bucket.Object("registry/sprites.json")
	assert.True(t, ok)

	require.NoError(t, store.Save(ctx, sampleRecord()))
	loaded, err := store.Load(ctx, "sprites")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), loaded)
}

func TestObjectStore_EmptyDocument(t *testing.T) {
	bucket := mocks.NewBucket()
	bucket.Put("registry/sprites.json", []byte(`{"group":"Sprites"}`))
	store := NewObjectStore(bucket, "assets", "registry", nil)

	rec, err := store.Load(context.Background(), "sprites")
	require.NoError(t, err)
	assert.Equal(t, "sprites", rec.Type)
	assert.NotNil(t, rec.Entries)
	assert.Equal(t, "Sprites", rec.Group)
}

func TestObjectStore_Corrupt(t *testing.T) {
	bucket := mocks.NewBucket()
	bucket.Put("registry/sprites.json", []byte(`{not json`))
	store := NewObjectStore(bucket, "assets", "registry", nil)

	_, err := store.Load(context.Background(), "sprites")
	require.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrRecordNotFound)
}
