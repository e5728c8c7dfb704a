// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either a MySQL server or a local SQLite file, chosen by
// Config.Driver. The relational record store in feature/records runs on top of
// the returned *gorm.DB.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table on either dialect. The record
// store uses it to verify that its tables carry the expected columns before
// reading from a database it did not migrate itself.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "registry_entries")
package database
