package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for datalens-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// CORSAllowedOrigins lists browser origins allowed to call the API; "*" allows all.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	// Snapshot store (MongoDB)
	Mongo MongoConfig `yaml:"mongo"`

	// Connector and profiler settings
	Datasource DatasourceConfig `yaml:"datasource"`
	Quality    QualityConfig    `yaml:"quality"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// MongoConfig holds snapshot store settings.
type MongoConfig struct {
	URI        string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database   string `yaml:"database" env:"MONGO_DATABASE" env-default:"datalens"`
	Collection string `yaml:"collection" env:"MONGO_COLLECTION" env-default:"snapshots"`
	// ConnectRetries is how many times startup retries the initial Mongo connection.
	ConnectRetries int `yaml:"connect_retries" env:"MONGO_CONNECT_RETRIES" env-default:"3"`
}

// DatasourceConfig holds settings applied to every target connection.
type DatasourceConfig struct {
	// ConnectTimeoutSeconds bounds each connection attempt. Queries are not bounded.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"DATASOURCE_CONNECT_TIMEOUT_SECONDS" env-default:"10"`
}

// ConnectTimeout returns the connect timeout as a duration.
func (c DatasourceConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// QualityConfig holds profiler settings.
type QualityConfig struct {
	SampleLimit     int `yaml:"sample_limit" env:"QUALITY_SAMPLE_LIMIT" env-default:"10000"`
	StaleAfterDays  int `yaml:"stale_after_days" env:"QUALITY_STALE_AFTER_DAYS" env-default:"90"`
	MaxFKChecks     int `yaml:"max_fk_checks" env:"QUALITY_MAX_FK_CHECKS" env-default:"3"`
	MinNumericCount int `yaml:"min_numeric_values" env:"QUALITY_MIN_NUMERIC_VALUES" env-default:"5"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit path. A missing file falls back to
// environment variables and defaults.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		if !isNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		// No file: environment and defaults only
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Datasource.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("datasource.connect_timeout_seconds must be positive")
	}
	if c.Quality.SampleLimit <= 0 {
		return fmt.Errorf("quality.sample_limit must be positive")
	}
	if c.Quality.StaleAfterDays <= 0 {
		return fmt.Errorf("quality.stale_after_days must be positive")
	}
	if c.Quality.MaxFKChecks < 0 {
		return fmt.Errorf("quality.max_fk_checks must not be negative")
	}
	if c.Quality.MinNumericCount <= 0 {
		return fmt.Errorf("quality.min_numeric_values must be positive")
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
