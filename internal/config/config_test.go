package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/cognivex/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[api]
base_path = "/api"
max_upload_size = "10MB"
max_audio_size = "50MB"

[api.cors]
enabled = false

[storage]
container_name = "recordings"
connection_string = "DefaultEndpointsProtocol=http;AccountName=cognivex;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/cognivex;"

[analysis]
api_key = "sk-test"
model = "gpt-4o-mini"

[session]
ttl = "30m"
`

const overlayConfig = `
[server]
port = 9090

[analysis]
model = "gpt-4o"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ContainerName != "recordings" {
		t.Errorf("container: got %s, want recordings", cfg.Storage.ContainerName)
	}
	if cfg.Session.TTLDuration() != 30*time.Minute {
		t.Errorf("session ttl: got %s, want 30m", cfg.Session.TTL)
	}
	if cfg.Session.CleanupInterval != "10m" {
		t.Errorf("session cleanup default: got %s, want 10m", cfg.Session.CleanupInterval)
	}
	if !cfg.Analysis.Valid() {
		t.Errorf("analysis config should be valid: %v", cfg.Analysis.Check())
	}
	if cfg.OpenAPI.Title == "" {
		t.Error("openapi title should default")
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("COGNIVEX_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Analysis.Model != "gpt-4o" {
		t.Errorf("model: got %s, want gpt-4o (from overlay)", cfg.Analysis.Model)
	}
	if cfg.Analysis.APIKey != "sk-test" {
		t.Errorf("api key: got %s, want sk-test (from base)", cfg.Analysis.APIKey)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("COGNIVEX_VERSION", "2.0.0")
	t.Setenv("COGNIVEX_SERVER_PORT", "3000")
	t.Setenv("COGNIVEX_ANALYSIS_API_KEY", "sk-env")
	t.Setenv("COGNIVEX_SESSION_TTL", "2h")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Analysis.APIKey != "sk-env" {
		t.Errorf("api key: got %s, want sk-env", cfg.Analysis.APIKey)
	}
	if cfg.Session.TTLDuration() != 2*time.Hour {
		t.Errorf("session ttl: got %s, want 2h", cfg.Session.TTL)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COGNIVEX_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
	if cfg.Analysis.Valid() {
		t.Error("analysis config without api key should be invalid")
	}
}

func TestLoadPlaceholderKeyStillLoads(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COGNIVEX_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("COGNIVEX_ANALYSIS_API_KEY", "sk-...")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Analysis.Valid() {
		t.Error("placeholder api key should be reported invalid")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnv(t *testing.T) {
	cfg := &config.Config{}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv("COGNIVEX_ENV", "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestServerAddr(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := cfg.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("addr: got %s, want 127.0.0.1:9000", got)
	}
}

func TestUploadLimits(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("COGNIVEX_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("COGNIVEX_API_MAX_AUDIO_SIZE", "25MB")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := cfg.API.MaxUploadSizeBytes(); got != 10*1024*1024 {
		t.Errorf("upload limit: got %d, want 10MB", got)
	}
	if got := cfg.API.MaxAudioSizeBytes(); got != 25*1024*1024 {
		t.Errorf("audio limit: got %d, want 25MB", got)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "invalid port",
			config: `
[server]
port = 99999
[storage]
connection_string = "conn"
`,
			wantErr: "invalid port",
		},
		{
			name: "invalid read_timeout",
			config: `
[server]
read_timeout = "bad"
[storage]
connection_string = "conn"
`,
			wantErr: "invalid read_timeout",
		},
		{
			name: "missing storage connection",
			config: `
[server]
port = 8080
`,
			wantErr: "connection_string required",
		},
		{
			name: "invalid audio size",
			config: `
[api]
max_audio_size = "lots"
[storage]
connection_string = "conn"
`,
			wantErr: "invalid max_audio_size",
		},
		{
			name: "invalid session ttl",
			config: `
[session]
ttl = "forever"
[storage]
connection_string = "conn"
`,
			wantErr: "session: invalid ttl",
		},
		{
			name: "invalid analysis timeout",
			config: `
[analysis]
timeout = "slow"
[storage]
connection_string = "conn"
`,
			wantErr: "analysis: invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
