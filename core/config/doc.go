// Package config provides configuration management for the registry tooling.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// a .env file and environment variables. Defaults come from the `default`
// struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Registry: registry type name, resolver group, resolve concurrency
//   - Catalog: manifest object key, manifest cache TTL, stat concurrency
//   - Records: record backend (database or storage), object prefix, auto migrate
//   - Audit: storage prefix and snapshot TTL for the reconcile audit
//   - Storage: S3/MinIO credentials and bucket settings
//   - Database: MySQL or SQLite connection details
//   - Log: Logging level and format
//   - Prefs: label preference file and window name
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Registry.Type)
package config
