package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/wizard"
	"github.com/JaimeStill/cognivex/pkg/openapi"
	"github.com/JaimeStill/cognivex/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCognivexEnv             = "COGNIVEX_ENV"
	EnvCognivexShutdownTimeout = "COGNIVEX_SHUTDOWN_TIMEOUT"
	EnvCognivexVersion         = "COGNIVEX_VERSION"
)

var storageEnv = &storage.Env{
	ContainerName:    "COGNIVEX_STORAGE_CONTAINER_NAME",
	ConnectionString: "COGNIVEX_STORAGE_CONNECTION_STRING",
	KeyPrefix:        "COGNIVEX_STORAGE_KEY_PREFIX",
}

var analysisEnv = &analysis.Env{
	BaseURL:            "COGNIVEX_ANALYSIS_BASE_URL",
	APIKey:             "COGNIVEX_ANALYSIS_API_KEY",
	Model:              "COGNIVEX_ANALYSIS_MODEL",
	TranscriptionModel: "COGNIVEX_ANALYSIS_TRANSCRIPTION_MODEL",
	MaxOutputTokens:    "COGNIVEX_ANALYSIS_MAX_OUTPUT_TOKENS",
	MaxRetries:         "COGNIVEX_ANALYSIS_MAX_RETRIES",
	RetryBackoff:       "COGNIVEX_ANALYSIS_RETRY_BACKOFF",
	Timeout:            "COGNIVEX_ANALYSIS_TIMEOUT",
}

var sessionEnv = &wizard.Env{
	TTL:             "COGNIVEX_SESSION_TTL",
	CleanupInterval: "COGNIVEX_SESSION_CLEANUP_INTERVAL",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "COGNIVEX_OPENAPI_TITLE",
	Description: "COGNIVEX_OPENAPI_DESCRIPTION",
}

// Config is the root configuration for the Cognivex service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	API             APIConfig       `toml:"api"`
	Storage         storage.Config  `toml:"storage"`
	Analysis        analysis.Config `toml:"analysis"`
	Session         wizard.Config   `toml:"session"`
	OpenAPI         openapi.Config  `toml:"openapi"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the COGNIVEX_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCognivexEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
//
// Analysis credentials are not checked here. A service with missing or
// placeholder credentials still starts and reports the problem; see
// analysis.Config.Check.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Storage.Merge(&overlay.Storage)
	c.Analysis.Merge(&overlay.Analysis)
	c.Session.Merge(&overlay.Session)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Analysis.Finalize(analysisEnv); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Session.Finalize(sessionEnv); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCognivexShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCognivexVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCognivexEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
