package types

// Config represents the overall application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig holds HTTP server settings for health and metrics endpoints
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines the object store and the bucket exposed as a blob store
type StorageConfig struct {
	Client   string           `yaml:"client" json:"client"` // "local" or "s3"
	Bucket   string           `yaml:"bucket" json:"bucket"`
	BasePath string           `yaml:"base_path" json:"base_path"` // slash-separated root blob path
	PageSize int              `yaml:"page_size" json:"page_size"` // keys per listing request
	Local    LocalStorageOpts `yaml:"local" json:"local"`
	S3       S3StorageOpts    `yaml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem client
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible client
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // zerolog level name
	Format string `yaml:"format" json:"format"` // "console" or "json"
}

// MetricsConfig toggles Prometheus instrumentation
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}
