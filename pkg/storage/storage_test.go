package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/cognivex/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=cognivexstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/cognivexstore;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewReturnsSystem(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "cognivex",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "cognivex",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, discard()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		filename   string
		wantPrefix string
		wantSuffix string
	}{
		{"keeps extension", "audio-uploads", "meeting.MP3", "audio-uploads/", ".mp3"},
		{"trims slashes from prefix", "/audio-uploads/", "call.wav", "audio-uploads/", ".wav"},
		{"no prefix", "", "call.ogg", "", ".ogg"},
		{"strips directories", "audio-uploads", `C:\\rec\\memo.m4a`, "audio-uploads/", ".m4a"},
		{"no extension", "audio-uploads", "recording", "audio-uploads/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := storage.BuildKey(tt.prefix, tt.filename)
			if !strings.HasPrefix(key, tt.wantPrefix) {
				t.Errorf("key %q missing prefix %q", key, tt.wantPrefix)
			}
			if !strings.HasSuffix(key, tt.wantSuffix) {
				t.Errorf("key %q missing suffix %q", key, tt.wantSuffix)
			}
			if strings.Contains(key, "..") {
				t.Errorf("key %q contains traversal", key)
			}
		})
	}

	if storage.BuildKey("p", "a.mp3") == storage.BuildKey("p", "a.mp3") {
		t.Error("keys for the same filename should differ")
	}
}

func TestKeyValidation(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "cognivex",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "audio-uploads/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "audio/..hidden/file.mp3", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "audio/mpeg"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
