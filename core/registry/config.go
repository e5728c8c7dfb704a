package registry

// Config holds the settings of one registry type.
type Config struct {
	// Type names the registry and its persisted record.
	Type string `mapstructure:"type" default:"sprites"`
	// Group is the resolver group used by imports and group tooling.
	Group string `mapstructure:"group" default:"Sprites"`
	// ResolveConcurrency bounds concurrent resolutions during initialization.
	ResolveConcurrency int `mapstructure:"resolve_concurrency" default:"16"`
}
