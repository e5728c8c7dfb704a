package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"asset-registry/core/storage"
	"asset-registry/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{name: "ValidConfig", cfg: storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "assets", Region: "us-east-1"}},
		{name: "EndpointWithHTTP", cfg: storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{name: "EndpointWithHTTPS", cfg: storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "assets").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(ctx, m, "assets", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "assets").Return(false, nil)
		m.On("MakeBucket", ctx, "assets", minio.MakeBucketOptions{Region: "eu"}).Return(nil)

		require.NoError(t, storage.EnsureBucket(ctx, m, "assets", "eu"))
		m.AssertExpectations(t)
	})

	t.Run("check fails", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", ctx, "assets").Return(false, errors.New("denied"))

		assert.Error(t, storage.EnsureBucket(ctx, m, "assets", ""))
	})
}

func TestReadObject(t *testing.T) {
	ctx := context.Background()

	t.Run("reads", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "assets", "a.json", mock.Anything).
			Return(io.NopCloser(strings.NewReader(`{"a":1}`)), nil)

		data, err := storage.ReadObject(ctx, m, "assets", "a.json")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(data))
	})

	t.Run("missing key", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("GetObject", ctx, "assets", "a.json", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		_, err := storage.ReadObject(ctx, m, "assets", "a.json")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})
}

func TestWriteObject(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("PutObject", ctx, "assets", "a.json", mock.Anything, int64(7), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "application/json"
	})).Return(minio.UploadInfo{}, nil)

	require.NoError(t, storage.WriteObject(ctx, m, "assets", "a.json", []byte(`{"a":1}`), "application/json"))
	m.AssertExpectations(t)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, storage.IsNotFound(nil))
	assert.False(t, storage.IsNotFound(errors.New("boom")))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, storage.IsNotFound(storage.ErrObjectNotFound))
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, storage.DefaultTimeout, storage.Config{}.Timeout())
	assert.Equal(t, 5*time.Second, storage.Config{TimeoutSeconds: 5}.Timeout())
}
