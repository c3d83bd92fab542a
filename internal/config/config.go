// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the application configuration. Values come from an optional
// JSON file and are overridden by environment variables.
type Config struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	LogMode     string `json:"log_mode,omitempty"`     // "dev" or "prod"

	AvatarsEnabled *bool  `json:"avatars_enabled,omitempty"` // Generate avatars during portfolio builds
	ChromePath     string `json:"chrome_path,omitempty"`     // Chrome/Chromium binary for PDF previews
	RenderTimeout  string `json:"render_timeout,omitempty"`  // Go duration, e.g. "60s"

	Redis RedisConfig `json:"redis"`
	MinIO MinIOConfig `json:"minio"`
}

// RedisConfig configures the draft session store.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	DraftTTL string `json:"draft_ttl,omitempty"` // Go duration, e.g. "24h"
}

// MinIOConfig configures the object store used for profile pictures.
// The object store is optional; leave Endpoint empty to inline images.
type MinIOConfig struct {
	Endpoint         string `json:"endpoint,omitempty"`
	PublicEndpoint   string `json:"public_endpoint,omitempty"`
	AccessKeyID      string `json:"access_key_id,omitempty"`
	SecretAccessKey  string `json:"secret_access_key,omitempty"`
	Bucket           string `json:"bucket,omitempty"`
	Region           string `json:"region,omitempty"`
	UseSSL           bool   `json:"use_ssl,omitempty"`
	AutoCreateBucket bool   `json:"auto_create_bucket,omitempty"`
}

// Enabled reports whether an object store endpoint is configured.
func (m MinIOConfig) Enabled() bool {
	return m.Endpoint != ""
}

// Default returns the built-in defaults.
func Default() *Config {
	avatars := true
	return &Config{
		Port:           8080,
		LogMode:        "dev",
		AvatarsEnabled: &avatars,
		RenderTimeout:  "60s",
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DraftTTL: "24h",
		},
		MinIO: MinIOConfig{
			Bucket:           "resuai",
			AutoCreateBucket: true,
		},
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (if any), then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.DatabaseURL = getEnvString("DATABASE_URL", c.DatabaseURL)
	c.APIKey = getEnvString("GEMINI_API_KEY", c.APIKey)
	c.LogMode = getEnvString("LOG_MODE", c.LogMode)
	c.ChromePath = getEnvString("CHROME_PATH", c.ChromePath)
	c.RenderTimeout = getEnvString("RENDER_TIMEOUT", c.RenderTimeout)
	if os.Getenv("AVATARS_ENABLED") != "" {
		enabled := getEnvBool("AVATARS_ENABLED", c.AvatarsOn())
		c.AvatarsEnabled = &enabled
	}

	c.Redis.Addr = getEnvString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.DraftTTL = getEnvString("DRAFT_TTL", c.Redis.DraftTTL)

	c.MinIO.Endpoint = getEnvString("MINIO_ENDPOINT", c.MinIO.Endpoint)
	c.MinIO.PublicEndpoint = getEnvString("MINIO_PUBLIC_ENDPOINT", c.MinIO.PublicEndpoint)
	c.MinIO.AccessKeyID = getEnvString("MINIO_ACCESS_KEY", c.MinIO.AccessKeyID)
	c.MinIO.SecretAccessKey = getEnvString("MINIO_SECRET_KEY", c.MinIO.SecretAccessKey)
	c.MinIO.Bucket = getEnvString("MINIO_BUCKET", c.MinIO.Bucket)
	c.MinIO.Region = getEnvString("MINIO_REGION", c.MinIO.Region)
	c.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", c.MinIO.UseSSL)
	c.MinIO.AutoCreateBucket = getEnvBool("MINIO_AUTO_CREATE_BUCKET", c.MinIO.AutoCreateBucket)
}

// Validate checks that the configuration has valid values.
// Required credentials are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config error: 'redis.db' must be non-negative")
	}
	if _, err := parsePositiveDuration("redis.draft_ttl", c.Redis.DraftTTL); err != nil {
		return err
	}
	if _, err := parsePositiveDuration("render_timeout", c.RenderTimeout); err != nil {
		return err
	}
	if c.MinIO.Enabled() {
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config error: 'minio.bucket' is required when minio is enabled")
		}
		if c.MinIO.AccessKeyID == "" || c.MinIO.SecretAccessKey == "" {
			return fmt.Errorf("config error: minio credentials are required when minio is enabled")
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if result.AvatarsEnabled == nil {
		result.AvatarsEnabled = defaults.AvatarsEnabled
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.RenderTimeout == "" {
		result.RenderTimeout = defaults.RenderTimeout
	}
	if result.Redis.Addr == "" {
		result.Redis.Addr = defaults.Redis.Addr
	}
	if result.Redis.DraftTTL == "" {
		result.Redis.DraftTTL = defaults.Redis.DraftTTL
	}
	if result.MinIO.Bucket == "" {
		result.MinIO.Bucket = defaults.MinIO.Bucket
	}

	// Bool fields cannot distinguish unset from false, so they are not merged.

	return result
}

// AvatarsOn reports whether avatar generation is enabled (default true).
func (c *Config) AvatarsOn() bool {
	return c.AvatarsEnabled == nil || *c.AvatarsEnabled
}

// DraftTTL returns the draft session lifetime.
func (c *Config) DraftTTL() time.Duration {
	d, err := parsePositiveDuration("redis.draft_ttl", c.Redis.DraftTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// RenderTimeoutDuration returns the PDF render timeout.
func (c *Config) RenderTimeoutDuration() time.Duration {
	d, err := parsePositiveDuration("render_timeout", c.RenderTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config error: invalid '%s' %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config error: '%s' must be positive", field)
	}
	return d, nil
}
