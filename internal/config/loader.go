package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read into the config
const EnvPrefix = "HIPPOFACTORY"

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set
	ConfigFile string
	// SearchPaths are searched for config.yaml when ConfigFile is empty.
	// Defaults to the config directory and the working directory.
	SearchPaths []string
	// EnvFile is a dotenv file loaded before the environment is read.
	// Defaults to .env; a missing file is ignored.
	EnvFile string
}

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance to access CLI flag bindings.
func Load(opts LoadOptions) (*Config, error) {
	return LoadWithViper(viper.GetViper(), opts)
}

// LoadWithViper loads configuration into the given viper instance
func LoadWithViper(v *viper.Viper, opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{ConfigDir(), "."}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables (HIPPOFACTORY_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("registry.url", EnvPrefix+"_REGISTRY_URL", "BINDLE_URL"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set
func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Registry defaults
	v.SetDefault("registry.url", "")
	v.SetDefault("registry.timeout", DefaultRegistryTimeout)
	v.SetDefault("registry.max_retries", DefaultMaxRetries)
	v.SetDefault("registry.cache.enabled", DefaultCacheEnabled)
	v.SetDefault("registry.cache.ttl", DefaultCacheTTL)
	v.SetDefault("registry.cache.directory", CacheDir())

	// Expansion defaults
	v.SetDefault("expansion.versioning", DefaultVersioning)

	// Output defaults
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.directory", DefaultOutputDir)
	v.SetDefault("output.force", false)

	// Publish defaults
	v.SetDefault("publish.workers", DefaultWorkers)
	v.SetDefault("publish.s3.endpoint", "")
	v.SetDefault("publish.s3.region", DefaultS3Region)
	v.SetDefault("publish.s3.bucket", "")
	v.SetDefault("publish.s3.access_key", "")
	v.SetDefault("publish.s3.secret_key", "")
	v.SetDefault("publish.s3.use_ssl", true)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// EnsureCacheDir creates the cache directory if it doesn't exist
func EnsureCacheDir() error {
	return os.MkdirAll(CacheDir(), 0755)
}
