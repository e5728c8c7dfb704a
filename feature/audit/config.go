package audit

import "time"

// Config holds the audit settings.
type Config struct {
	// Prefix limits the storage listing to asset blobs.
	Prefix string `mapstructure:"prefix" default:"sprites/"`
	// CacheTTLSeconds keeps audit snapshots for repeated lookups. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"300"`
}

// CacheTTL returns the snapshot lifetime.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
