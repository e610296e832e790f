package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/hippofactory-go/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Registry  RegistryConfig  `mapstructure:"registry" yaml:"registry"`
	Expansion ExpansionConfig `mapstructure:"expansion" yaml:"expansion"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Publish   PublishConfig   `mapstructure:"publish" yaml:"publish"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// RegistryConfig contains Bindle registry settings
type RegistryConfig struct {
	URL        string        `mapstructure:"url" yaml:"url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Cache      CacheConfig   `mapstructure:"cache" yaml:"cache"`
}

// CacheConfig contains registry response cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// ExpansionConfig contains invoice expansion settings
type ExpansionConfig struct {
	Versioning string `mapstructure:"versioning" yaml:"versioning"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Directory string `mapstructure:"directory" yaml:"directory"`
	Force     bool   `mapstructure:"force" yaml:"force"`
}

// PublishConfig contains standalone bindle publishing settings
type PublishConfig struct {
	Workers int      `mapstructure:"workers" yaml:"workers"`
	S3      S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config contains S3-compatible object storage settings
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, replacing out-of-range values with
// defaults. Only an unusable registry URL is an error.
func (c *Config) Validate() error {
	if c.Registry.URL != "" {
		normalized, err := utils.NormalizeServerURL(c.Registry.URL)
		if err != nil {
			return fmt.Errorf("invalid registry.url: %w", err)
		}
		c.Registry.URL = normalized
	}
	if c.Registry.Timeout < time.Second {
		c.Registry.Timeout = DefaultRegistryTimeout
	}
	if c.Registry.MaxRetries < 0 {
		c.Registry.MaxRetries = DefaultMaxRetries
	}
	if c.Registry.Cache.TTL < time.Minute {
		c.Registry.Cache.TTL = DefaultCacheTTL
	}
	if c.Registry.Cache.Directory == "" {
		c.Registry.Cache.Directory = CacheDir()
	}

	switch c.Expansion.Versioning {
	case "dev", "production":
	default:
		c.Expansion.Versioning = DefaultVersioning
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch c.Output.Format {
	case "toml", "json":
	default:
		c.Output.Format = DefaultOutputFormat
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}

	if c.Publish.Workers < 1 {
		c.Publish.Workers = DefaultWorkers
	}
	if c.Publish.S3.Region == "" {
		c.Publish.S3.Region = DefaultS3Region
	}

	switch c.Logging.Format {
	case "pretty", "json":
	default:
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}

	return nil
}

// HasS3 reports whether enough S3 settings are present to publish to a bucket
func (c *Config) HasS3() bool {
	s3 := c.Publish.S3
	return s3.Endpoint != "" && s3.Bucket != "" && s3.AccessKey != "" && s3.SecretKey != ""
}
