package analysis

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds connection and model settings for the analysis backend.
type Config struct {
	BaseURL            string `toml:"base_url"`
	APIKey             string `toml:"api_key"`
	Model              string `toml:"model"`
	TranscriptionModel string `toml:"transcription_model"`
	MaxOutputTokens    int    `toml:"max_output_tokens"`
	MaxRetries         int    `toml:"max_retries"`
	RetryBackoff       string `toml:"retry_backoff"`
	Timeout            string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL            string
	APIKey             string
	Model              string
	TranscriptionModel string
	MaxOutputTokens    string
	MaxRetries         string
	RetryBackoff       string
	Timeout            string
}

// Finalize applies defaults, environment variable overrides, and validation.
// Missing credentials are not a finalize error; see Check.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.TranscriptionModel != "" {
		c.TranscriptionModel = overlay.TranscriptionModel
	}
	if overlay.MaxOutputTokens != 0 {
		c.MaxOutputTokens = overlay.MaxOutputTokens
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Check reports whether the backend credentials are usable. Missing values
// and placeholder values containing "..." are configuration errors.
func (c *Config) Check() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: api_key is missing", ErrConfiguration)
	}
	if strings.Contains(c.APIKey, "...") {
		return fmt.Errorf("%w: api_key is a placeholder", ErrConfiguration)
	}
	if strings.Contains(c.BaseURL, "...") {
		return fmt.Errorf("%w: base_url is a placeholder", ErrConfiguration)
	}
	return nil
}

// Valid is the configuration validity flag: the wizard is only reachable when true.
func (c *Config) Valid() bool {
	return c.Check() == nil
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *Config) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	return d
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.TranscriptionModel == "" {
		c.TranscriptionModel = "whisper-1"
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 4096
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "2s"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(env.BaseURL, &c.BaseURL)
	setString(env.APIKey, &c.APIKey)
	setString(env.Model, &c.Model)
	setString(env.TranscriptionModel, &c.TranscriptionModel)
	setInt(env.MaxOutputTokens, &c.MaxOutputTokens)
	setInt(env.MaxRetries, &c.MaxRetries)
	setString(env.RetryBackoff, &c.RetryBackoff)
	setString(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	if c.MaxOutputTokens < 1 {
		return fmt.Errorf("invalid max_output_tokens: %d", c.MaxOutputTokens)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries: %d", c.MaxRetries)
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
