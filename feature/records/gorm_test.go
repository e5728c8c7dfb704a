package records

import (
	"context"
	"errors"
	"testing"

	"asset-registry/core/database"
	"asset-registry/core/registry"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store := NewGormStore(db, nil)
	require.NoError(t, store.Migrate())
	return store
}

// setupMockDB creates a mock GORM DB speaking the mysql dialect.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func sampleRecord() *registry.Record {
	rec := registry.NewRecord("sprites")
	rec.Group = "Sprites"
	rec.Labels = []registry.LabelStart{{Name: "Portraits", Start: 0}, {Name: "Icons", Start: 1000}}
	rec.Entries["0"] = "default.png|g-0|Portraits"
	rec.Entries["1000"] = "coin.png|g-1|Icons"
	rec.Entries["1001"] = "||Icons"
	return rec
}

func TestGormStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupSQLite(t)

	_, err := store.Load(ctx, "sprites")
	assert.ErrorIs(t, err, registry.ErrRecordNotFound)

	created, err := store.Create(ctx, "sprites")
	require.NoError(t, err)
	assert.Empty(t, created.Entries)

	loaded, err := store.Load(ctx, "sprites")
	require.NoError(t, err)
	assert.Empty(t, loaded.Entries)
	assert.Empty(t, loaded.Group)

	require.NoError(t, store.Save(ctx, sampleRecord()))
	loaded, err = store.Load(ctx, "sprites")
	require.NoError(t, err)
	assert.Equal(t, "Sprites", loaded.Group)
	assert.Equal(t, sampleRecord().Labels, loaded.Labels)
	assert.Equal(t, sampleRecord().Entries, loaded.Entries)

	t.Run("stale keys and labels are dropped", func(t *testing.T) {
		rec := sampleRecord()
		delete(rec.Entries, "1001")
		rec.Labels = rec.Labels[1:]
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, "sprites")
		require.NoError(t, err)
		assert.NotContains(t, loaded.Entries, "1001")
		assert.Equal(t, []registry.LabelStart{{Name: "Icons", Start: 1000}}, loaded.Labels)
	})

	t.Run("types are independent", func(t *testing.T) {
		other := registry.NewRecord("portraits")
		other.Entries["5"] = "p.png|g-5|"
		require.NoError(t, store.Save(ctx, other))

		loaded, err := store.Load(ctx, "sprites")
		require.NoError(t, err)
		assert.Len(t, loaded.Entries, 2)
	})
}

func TestGormStore_LabelOrderKept(t *testing.T) {
	ctx := context.Background()
	store := setupSQLite(t)

	rec := registry.NewRecord("sprites")
	rec.Labels = []registry.LabelStart{{Name: "Z", Start: 0}, {Name: "A", Start: 5}, {Name: "M", Start: 2}}
	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx, "sprites")
	require.NoError(t, err)
	assert.Equal(t, rec.Labels, loaded.Labels)
}

func TestGormStore_VerifySchema(t *testing.T) {
	store := setupSQLite(t)
	assert.NoError(t, store.VerifySchema())

	require.NoError(t, store.db.Exec("DROP TABLE registry_labels").Error)
	require.NoError(t, store.db.Exec("CREATE TABLE registry_labels (type_name TEXT, name TEXT)").Error)

	err := store.VerifySchema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry_labels missing starting_index, position")
}

func TestGormStore_LoadQueryError(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	store := NewGormStore(db, nil)

	sqlMock.ExpectQuery("SELECT \\* FROM `registry_records` WHERE type_name = .+").
		WillReturnError(errors.New("connection lost"))

	_, err := store.Load(context.Background(), "sprites")
	require.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrRecordNotFound)
	assert.Contains(t, err.Error(), "connection lost")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestGormStore_LoadNotFound(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	store := NewGormStore(db, nil)

	sqlMock.ExpectQuery("SELECT \\* FROM `registry_records` WHERE type_name = .+").
		WillReturnRows(sqlmock.NewRows([]string{"type_name", "group_name"}))

	_, err := store.Load(context.Background(), "sprites")
	assert.ErrorIs(t, err, registry.ErrRecordNotFound)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestGormStore_SaveRollsBack(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	store := NewGormStore(db, nil)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `registry_records`").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectExec("DELETE FROM `registry_entries`").WillReturnResult(sqlmock.NewResult(0, 3))
	sqlMock.ExpectExec("INSERT INTO `registry_entries`").WillReturnError(errors.New("disk full"))
	sqlMock.ExpectRollback()

	err := store.Save(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert entries")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
