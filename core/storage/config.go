package storage

import (
	"strings"
	"time"
)

// Config holds configuration for the object store that keeps import documents when the
// binding backend is "storage".
type Config struct {
	// Endpoint is the S3-compatible endpoint, with or without a scheme.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL switches the client to HTTPS.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket holds the import documents under the binding prefix.
	Bucket string `mapstructure:"bucket" default:"assets"`
	// Region is used when the bucket has to be created. Empty lets the server decide.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup, TLS handshake and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Host returns Endpoint without its scheme, the form minio expects.
func (c Config) Host() string {
	host := strings.TrimPrefix(c.Endpoint, "http://")
	return strings.TrimPrefix(host, "https://")
}

// Timeout returns the transport timeout, 30s when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
