package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "COGNIVEX_SERVER_HOST"
	EnvServerPort            = "COGNIVEX_SERVER_PORT"
	EnvServerReadTimeout     = "COGNIVEX_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "COGNIVEX_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "COGNIVEX_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "COGNIVEX_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. WriteTimeout must exceed the
// analysis timeout.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return parseDuration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return parseDuration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return parseDuration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return parseDuration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.durations(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := map[*string]string{
		&c.ReadTimeout:     "1m",
		&c.WriteTimeout:    "5m",
		&c.IdleTimeout:     "2m",
		&c.ShutdownTimeout: "30s",
	}
	for dst, v := range defaults {
		if *dst == "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.durations(nil) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations(nil) {
		if _, err := time.ParseDuration(*f.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

type durationField struct {
	name string
	env  string
	dst  *string
	src  *string
}

// durations lists the duration fields of c paired with the same field of
// overlay, when given.
func (c *ServerConfig) durations(overlay *ServerConfig) []durationField {
	fields := []durationField{
		{name: "read_timeout", env: EnvServerReadTimeout, dst: &c.ReadTimeout},
		{name: "write_timeout", env: EnvServerWriteTimeout, dst: &c.WriteTimeout},
		{name: "idle_timeout", env: EnvServerIdleTimeout, dst: &c.IdleTimeout},
		{name: "shutdown_timeout", env: EnvServerShutdownTimeout, dst: &c.ShutdownTimeout},
	}
	if overlay != nil {
		fields[0].src = &overlay.ReadTimeout
		fields[1].src = &overlay.WriteTimeout
		fields[2].src = &overlay.IdleTimeout
		fields[3].src = &overlay.ShutdownTimeout
	}
	return fields
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
