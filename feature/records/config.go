package records

// Config holds configuration for the persisted record store.
type Config struct {
	// Backend selects where records live (database, storage).
	Backend string `mapstructure:"backend" default:"database"`
	// Prefix is the object key prefix used by the storage backend.
	Prefix string `mapstructure:"prefix" default:"registry"`
	// AutoMigrate creates the record tables on startup when using the database backend.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
}

const (
	BackendDatabase = "database"
	BackendStorage  = "storage"
)

// IsValidBackend checks if the configured backend is valid.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case BackendDatabase, BackendStorage:
		return true
	default:
		return false
	}
}
