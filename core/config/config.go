package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"asset-registry/core/database"
	"asset-registry/core/logger"
	"asset-registry/core/prefs"
	"asset-registry/core/registry"
	"asset-registry/core/storage"
	"asset-registry/feature/audit"
	"asset-registry/feature/catalog"
	"asset-registry/feature/records"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the tooling.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Registry names the registry type and its resolver group.
	Registry registry.Config `mapstructure:"registry"`
	// Catalog holds the catalog manifest settings.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Records selects and configures the persisted record backend.
	Records records.Config `mapstructure:"records"`
	// Audit holds the reconcile audit settings.
	Audit audit.Config `mapstructure:"audit"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Prefs holds configuration for the label preference store.
	Prefs prefs.Config `mapstructure:"prefs"`
}

// LoadConfig loads configuration from an optional config.yaml in path, the
// .env file and environment variables, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. REGISTRY_TYPE -> registry.type)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Registry.Type == "" {
		return errors.New("registry.type must not be empty")
	}
	if !c.Records.IsValidBackend() {
		return fmt.Errorf("records.backend %q is not one of %s, %s", c.Records.Backend, records.BackendDatabase, records.BackendStorage)
	}
	return nil
}

// bindValues registers every key with its 'default' tag so AutomaticEnv can see it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Set even empty defaults so the key exists for AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
