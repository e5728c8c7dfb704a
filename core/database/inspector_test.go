package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memoryConfig = Config{Driver: "sqlite", Name: ":memory:"}

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(memoryConfig)
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE registry_entries (id INTEGER PRIMARY KEY, type_name TEXT, record_key TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "registry_entries")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["type_name"])
	assert.Equal(t, "text", colMap["record_key"])

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(memoryConfig)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE registry_labels (id INTEGER PRIMARY KEY, name TEXT)").Error)

	missing, err := MissingColumns(db, "registry_labels", []string{"id", "Name", "start", "position"})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "position"}, missing)
}
