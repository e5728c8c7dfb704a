package storage

import "time"

// DefaultTimeout applies when TimeoutSeconds is not positive.
const DefaultTimeout = 30 * time.Second

// Config holds the S3 compatible storage settings shared by the catalog,
// the audit and the object record backend.
type Config struct {
	// Endpoint is host:port of the storage service. A scheme prefix is stripped.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL enables TLS.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the catalog manifest, asset blobs and object records.
	Bucket string `mapstructure:"bucket" default:"registry-assets"`
	// Region is passed to MakeBucket when the bucket is created.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds dialing, TLS handshakes and response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout returns the connection timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
