package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Registry defaults
	DefaultRegistryTimeout = 30 * time.Second
	DefaultMaxRetries      = 3

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = 24 * time.Hour

	// Expansion defaults
	DefaultVersioning = "dev"

	// Output defaults
	DefaultOutputFormat = "toml"
	DefaultOutputDir    = "./bindle"

	// Publish defaults
	DefaultWorkers  = 4
	DefaultS3Region = "us-east-1"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hippofactory"
	}
	return filepath.Join(home, ".hippofactory")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			Timeout:    DefaultRegistryTimeout,
			MaxRetries: DefaultMaxRetries,
			Cache: CacheConfig{
				Enabled:   DefaultCacheEnabled,
				TTL:       DefaultCacheTTL,
				Directory: CacheDir(),
			},
		},
		Expansion: ExpansionConfig{
			Versioning: DefaultVersioning,
		},
		Output: OutputConfig{
			Format:    DefaultOutputFormat,
			Directory: DefaultOutputDir,
		},
		Publish: PublishConfig{
			Workers: DefaultWorkers,
			S3: S3Config{
				Region: DefaultS3Region,
				UseSSL: true,
			},
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
