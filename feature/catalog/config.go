package catalog

import "time"

// Config holds the catalog settings.
type Config struct {
	// Object is the manifest key inside the storage bucket.
	Object string `mapstructure:"object" default:"catalog/catalog.json"`
	// CacheTTLSeconds is how long a downloaded manifest is reused. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// StatConcurrency bounds concurrent StatObject calls during size estimation.
	StatConcurrency int `mapstructure:"stat_concurrency" default:"16"`
}

// CacheTTL returns the manifest cache lifetime.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
