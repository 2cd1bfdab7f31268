package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/cognivex/pkg/formatting"
	"github.com/JaimeStill/cognivex/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "COGNIVEX_CORS_ENABLED",
	Origins:          "COGNIVEX_CORS_ORIGINS",
	AllowedMethods:   "COGNIVEX_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "COGNIVEX_CORS_ALLOWED_HEADERS",
	AllowCredentials: "COGNIVEX_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "COGNIVEX_CORS_MAX_AGE",
}

// APIConfig holds API routing, CORS, and upload limits.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MaxAudioSize  string                `toml:"max_audio_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns the document upload limit. Call after Finalize.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// MaxAudioSizeBytes returns the recording upload limit. Call after Finalize.
func (c *APIConfig) MaxAudioSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxAudioSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxAudioSize != "" {
		c.MaxAudioSize = overlay.MaxAudioSize
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.MaxAudioSize == "" {
		c.MaxAudioSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("COGNIVEX_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("COGNIVEX_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("COGNIVEX_API_MAX_AUDIO_SIZE"); v != "" {
		c.MaxAudioSize = v
	}
}

func (c *APIConfig) validate() error {
	for name, v := range map[string]string{
		"max_upload_size": c.MaxUploadSize,
		"max_audio_size":  c.MaxAudioSize,
	} {
		size, err := formatting.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if size <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
