package records

import (
	"testing"

	"asset-registry/core/database"
	"asset-registry/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_IsValidBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    bool
	}{
		{"Database", BackendDatabase, true},
		{"Storage", BackendStorage, true},
		{"Invalid", "redis", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Backend: tt.backend}
			assert.Equal(t, tt.want, c.IsValidBackend())
		})
	}
}

func TestNewStore(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	t.Run("database migrates", func(t *testing.T) {
		store, err := NewStore(Config{Backend: BackendDatabase, AutoMigrate: true}, db, nil, "", nil)
		require.NoError(t, err)
		require.IsType(t, &GormStore{}, store)
		assert.NoError(t, store.(*GormStore).VerifySchema())
	})

	t.Run("storage", func(t *testing.T) {
		store, err := NewStore(Config{Backend: BackendStorage, Prefix: "records"}, nil, mocks.NewBucket(), "assets", nil)
		require.NoError(t, err)
		require.IsType(t, &ObjectStore{}, store)
		assert.Equal(t, "records/x.json", store.(*ObjectStore).Key("x"))
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewStore(Config{Backend: BackendDatabase}, nil, nil, "", nil)
		assert.Error(t, err)
		_, err = NewStore(Config{Backend: BackendStorage}, nil, nil, "", nil)
		assert.Error(t, err)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := NewStore(Config{Backend: "redis"}, db, mocks.NewBucket(), "", nil)
		assert.Error(t, err)
	})
}
