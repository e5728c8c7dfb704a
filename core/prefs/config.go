package prefs

// Config holds configuration for the preference store.
type Config struct {
	// Path is the YAML file holding preferences. Empty keeps preferences in memory.
	Path string `mapstructure:"path" default:".asset-registry-prefs.yaml"`
	// Window namespaces preference keys, one per registry tool.
	Window string `mapstructure:"window" default:""`
}
