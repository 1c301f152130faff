package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unalkalkan/bucketblob/pkg/types"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
server:
  host: "localhost"
  port: 9090
  read_timeout: 10
  write_timeout: 10

storage:
  client: "local"
  bucket: "snapshots"
  base_path: "cluster/repo"
  page_size: 250
  local:
    base_path: "/tmp/test"

log:
  level: "debug"
  format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Client != "local" {
		t.Errorf("Expected client 'local', got '%s'", cfg.Storage.Client)
	}
	if cfg.Storage.Bucket != "snapshots" {
		t.Errorf("Expected bucket 'snapshots', got '%s'", cfg.Storage.Bucket)
	}
	if cfg.Storage.BasePath != "cluster/repo" {
		t.Errorf("Expected base_path 'cluster/repo', got '%s'", cfg.Storage.BasePath)
	}
	if cfg.Storage.PageSize != 250 {
		t.Errorf("Expected page_size 250, got %d", cfg.Storage.PageSize)
	}
	if cfg.Storage.Local.BasePath != "/tmp/test" {
		t.Errorf("Expected local base_path '/tmp/test', got '%s'", cfg.Storage.Local.BasePath)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.Log.Format)
	}
	// Not in the file, so the default survives
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics to stay enabled by default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*types.Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *types.Config) {},
			wantErr: false,
		},
		{
			name: "invalid port",
			modify: func(c *types.Config) {
				c.Server.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid storage client",
			modify: func(c *types.Config) {
				c.Storage.Client = "invalid"
			},
			wantErr: true,
		},
		{
			name: "missing bucket",
			modify: func(c *types.Config) {
				c.Storage.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "negative page size",
			modify: func(c *types.Config) {
				c.Storage.PageSize = -1
			},
			wantErr: true,
		},
		{
			name: "missing local base path",
			modify: func(c *types.Config) {
				c.Storage.Client = "local"
				c.Storage.Local.BasePath = ""
			},
			wantErr: true,
		},
		{
			name: "relative local base path",
			modify: func(c *types.Config) {
				c.Storage.Local.BasePath = "data"
			},
			wantErr: true,
		},
		{
			name: "missing s3 region",
			modify: func(c *types.Config) {
				c.Storage.Client = "s3"
				c.Storage.S3.Region = ""
			},
			wantErr: true,
		},
		{
			name: "valid s3",
			modify: func(c *types.Config) {
				c.Storage.Client = "s3"
				c.Storage.S3.Region = "eu-central-1"
			},
			wantErr: false,
		},
		{
			name: "invalid log format",
			modify: func(c *types.Config) {
				c.Log.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaultsPageSize(t *testing.T) {
	cfg := GetDefault()
	cfg.Storage.PageSize = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Storage.PageSize != 1000 {
		t.Errorf("Expected default page size 1000, got %d", cfg.Storage.PageSize)
	}
}

func TestEnvOverrides(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
server:
  host: "localhost"
  port: 8080
storage:
  client: "local"
  bucket: "snapshots"
  local:
    base_path: "/tmp/test"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Set environment variables
	t.Setenv("BB_SERVER_PORT", "9999")
	t.Setenv("BB_STORAGE_LOCAL_BASE_PATH", "/tmp/override")
	t.Setenv("BB_STORAGE_BUCKET", "other")
	t.Setenv("BB_METRICS_ENABLED", "false")

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment overrides were applied
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from env override, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Local.BasePath != "/tmp/override" {
		t.Errorf("Expected base_path '/tmp/override' from env override, got '%s'", cfg.Storage.Local.BasePath)
	}
	if cfg.Storage.Bucket != "other" {
		t.Errorf("Expected bucket 'other' from env override, got '%s'", cfg.Storage.Bucket)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled from env override")
	}
}

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()
	if cfg == nil {
		t.Fatal("GetDefault() returned nil")
	}
	if cfg.Server.Port <= 0 {
		t.Error("Default config has invalid port")
	}
	if cfg.Storage.Client == "" {
		t.Error("Default config has empty storage client")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
}
