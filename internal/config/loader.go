package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/unalkalkan/bucketblob/pkg/types"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration file
// It also supports environment variable overrides with BB_ prefix
func Load(configPath string) (*types.Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML on top of the defaults
	cfg := GetDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func Validate(cfg *types.Config) error {
	// Validate server config
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	// Validate storage client
	if cfg.Storage.Client != "local" && cfg.Storage.Client != "s3" {
		return fmt.Errorf("invalid storage client: %s (must be 'local' or 's3')", cfg.Storage.Client)
	}

	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	if cfg.Storage.PageSize < 0 {
		return fmt.Errorf("invalid storage page_size: %d", cfg.Storage.PageSize)
	}
	if cfg.Storage.PageSize == 0 {
		cfg.Storage.PageSize = 1000 // default
	}

	if cfg.Storage.Client == "local" {
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
		// Ensure base path is absolute
		if !filepath.IsAbs(cfg.Storage.Local.BasePath) {
			return fmt.Errorf("local storage base_path must be absolute: %s", cfg.Storage.Local.BasePath)
		}
	}

	if cfg.Storage.Client == "s3" {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	}

	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", cfg.Log.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with BB_
func applyEnvOverrides(cfg *types.Config) {
	// Server overrides
	if val := os.Getenv("BB_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("BB_SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Server.Port)
	}

	// Storage overrides
	if val := os.Getenv("BB_STORAGE_CLIENT"); val != "" {
		cfg.Storage.Client = val
	}
	if val := os.Getenv("BB_STORAGE_BUCKET"); val != "" {
		cfg.Storage.Bucket = val
	}
	if val := os.Getenv("BB_STORAGE_BASE_PATH"); val != "" {
		cfg.Storage.BasePath = val
	}
	if val := os.Getenv("BB_STORAGE_PAGE_SIZE"); val != "" {
		fmt.Sscanf(val, "%d", &cfg.Storage.PageSize)
	}
	if val := os.Getenv("BB_STORAGE_LOCAL_BASE_PATH"); val != "" {
		cfg.Storage.Local.BasePath = val
	}
	if val := os.Getenv("BB_STORAGE_S3_REGION"); val != "" {
		cfg.Storage.S3.Region = val
	}
	if val := os.Getenv("BB_STORAGE_S3_ENDPOINT"); val != "" {
		cfg.Storage.S3.Endpoint = val
	}
	if val := os.Getenv("BB_STORAGE_S3_ACCESS_KEY_ID"); val != "" {
		cfg.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("BB_STORAGE_S3_SECRET_ACCESS_KEY"); val != "" {
		cfg.Storage.S3.SecretAccessKey = val
	}
	if val := os.Getenv("BB_STORAGE_S3_USE_SSL"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.S3.UseSSL = b
		}
	}

	// Log and metrics overrides
	if val := os.Getenv("BB_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("BB_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	if val := os.Getenv("BB_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
}

// GetDefault returns a default configuration
func GetDefault() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
		},
		Storage: types.StorageConfig{
			Client:   "local",
			Bucket:   "blobs",
			PageSize: 1000,
			Local: types.LocalStorageOpts{
				BasePath: "/var/lib/bucketblob",
			},
			S3: types.S3StorageOpts{
				UseSSL: true,
			},
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: types.MetricsConfig{
			Enabled: true,
		},
	}
}
