// Package config provides configuration loading and management for the server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StorageTypePostgres persists records in PostgreSQL
	StorageTypePostgres = "postgres"

	// StorageTypeMemory keeps records in process memory
	StorageTypeMemory = "memory"
)

// Default values applied before the config file and environment are read.
const (
	DefaultListenAddr     = ":3000"
	DefaultUpstreamURL    = "https://api.spacexdata.com/v4"
	DefaultMaxAttempts    = 3
	DefaultAttemptTimeout = 30 * time.Second
)

// EnvPrefix is the prefix shared by all environment overrides.
const EnvPrefix = "SPACEDATA"

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string `yaml:"listenAddr,omitempty"`

	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Upstream UpstreamConfig `yaml:"upstream,omitempty"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	// Type is the backend selector (postgres or memory)
	Type string `yaml:"type,omitempty"`

	// Database holds connection settings when Type is postgres
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// UpstreamConfig defines the upstream dataset API and fetch policy
type UpstreamConfig struct {
	// BaseURL is the upstream API base (endpoint paths are appended)
	BaseURL string `yaml:"baseURL,omitempty"`

	// MaxAttempts bounds the retry loop for one fetch
	MaxAttempts int `yaml:"maxAttempts,omitempty"`

	// AttemptTimeout bounds a single HTTP attempt
	AttemptTimeout time.Duration `yaml:"attemptTimeout,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// This is the recommended approach for production deployments
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from SPACEDATA_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	// Priority 1: Read from file if specified
	if d.PasswordFile != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		// Trim whitespace (including newlines) from file content
		password := strings.TrimSpace(string(data))
		return password, nil
	}

	// Priority 2: Check environment variable
	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable",
		EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	// URL-escape the password to handle special characters
	escapedPassword := url.QueryEscape(password)

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		escapedPassword,
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// LoadConfig loads configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	config := &Config{
		ListenAddr: DefaultListenAddr,
		Storage:    StorageConfig{Type: StorageTypeMemory},
		Upstream: UpstreamConfig{
			BaseURL:        DefaultUpstreamURL,
			MaxAttempts:    DefaultMaxAttempts,
			AttemptTimeout: DefaultAttemptTimeout,
		},
	}

	if loaderCfg.path != "" {
		// Read the entire file into memory
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse YAML content
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	applyEnvOverrides(config)

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets deployment environments override the file without
// templating it.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvPrefix + "_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "_UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypePostgres:
		if err := validateDatabaseConfig(c.Storage.Database); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.type must be %s or %s, got %q",
			StorageTypePostgres, StorageTypeMemory, c.Storage.Type)
	}

	return validateUpstreamConfig(&c.Upstream)
}

// validateDatabaseConfig validates the settings required to reach PostgreSQL
func validateDatabaseConfig(db *DatabaseConfig) error {
	if db == nil {
		return fmt.Errorf("storage.database is required when storage.type is %s", StorageTypePostgres)
	}
	if db.Host == "" {
		return fmt.Errorf("storage.database.host is required")
	}
	if db.Port <= 0 {
		return fmt.Errorf("storage.database.port is required")
	}
	if db.User == "" {
		return fmt.Errorf("storage.database.user is required")
	}
	if db.Database == "" {
		return fmt.Errorf("storage.database.database is required")
	}
	return nil
}

// validateUpstreamConfig validates the upstream fetch policy
func validateUpstreamConfig(up *UpstreamConfig) error {
	if up.BaseURL == "" {
		return fmt.Errorf("upstream.baseURL is required")
	}
	if _, err := url.ParseRequestURI(up.BaseURL); err != nil {
		return fmt.Errorf("upstream.baseURL must be a valid URL: %w", err)
	}
	if up.MaxAttempts <= 0 {
		return fmt.Errorf("upstream.maxAttempts must be positive")
	}
	if up.AttemptTimeout <= 0 {
		return fmt.Errorf("upstream.attemptTimeout must be positive")
	}
	return nil
}
