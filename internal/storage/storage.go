// Package storage provides the default file-backed implementation of the
// persisted key-value contract. The bridge stores exactly one key (the
// last-connected wallet name), but the store is generic over string pairs.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/halcyonlabs/walletbridge/internal/client"
	"github.com/halcyonlabs/walletbridge/internal/fileutil"
)

// ErrKeyNotFound indicates the key is absent from the store.
var ErrKeyNotFound = errors.New("key not found")

// filePermissions is the permission mode for the store file.
const filePermissions = 0o600

// FileStore persists string pairs as a JSON object in a single file,
// written atomically on every mutation.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// Compile-time interface check.
var _ client.Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the value for key or ErrKeyNotFound.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores the value for key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

// Delete removes key from the store; deleting an absent key is not an
// error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // G304: path is configured by the host application
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if unmarshalErr := json.Unmarshal(data, &entries); unmarshalErr != nil {
		// Corrupted store: start fresh rather than wedge every write.
		return map[string]string{}, nil
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(s.path, data, filePermissions)
}

// MemoryStore is an in-memory Store for tests and embedded use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// Compile-time interface check.
var _ client.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Get returns the value for key or ErrKeyNotFound.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores the value for key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
