// Package storagetest provides an in-memory storage.System for tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/JaimeStill/cognivex/pkg/lifecycle"
	"github.com/JaimeStill/cognivex/pkg/storage"
)

// Store is an in-memory storage.System. Set UploadErr or DeleteErr to force
// failures. It is safe for concurrent use.
type Store struct {
	Prefix    string
	UploadErr error
	DeleteErr error

	mu      sync.Mutex
	blobs   map[string][]byte
	types   map[string]string
	deleted []string
}

// New returns an empty Store that issues keys under "audio-uploads".
func New() *Store {
	return &Store{
		Prefix: "audio-uploads",
		blobs:  make(map[string][]byte),
		types:  make(map[string]string),
	}
}

func (s *Store) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func (s *Store) NewKey(filename string) string {
	return storage.BuildKey(s.Prefix, filename)
}

func (s *Store) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if s.UploadErr != nil {
		return s.UploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	s.types[key] = contentType
	return nil
}

func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.blobs, key)
	delete(s.types, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// Keys returns the keys currently stored, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Deleted returns the keys removed through Delete, in order.
func (s *Store) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deleted)
}

// ContentType returns the content type recorded for key.
func (s *Store) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}
