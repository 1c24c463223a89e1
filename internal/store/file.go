package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// entryExtension is the file extension used for stored values.
const entryExtension = ".cache"

// FileStore keeps each key in its own file under a directory.
// Writes go to a temporary file and are renamed into place.
type FileStore struct {
	directory string

	// mu serialises writers within this process; other processes rely on rename atomicity.
	mu sync.RWMutex
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		return nil, errors.New("store directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{directory: directory}, nil
}

// Get reads the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validateKeys(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyToFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// Set overwrites the value stored under key.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := validateKeys(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	tmp, err := os.CreateTemp(s.directory, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Clear removes the given keys. With no keys it removes every stored value.
func (s *FileStore) Clear(_ context.Context, keys ...string) error {
	if err := validateKeys(keys...); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		return s.clearAllLocked()
	}

	for _, key := range keys {
		if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", key, err)
		}
	}
	return nil
}

func (s *FileStore) clearAllLocked() error {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("reading store directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != entryExtension {
			continue
		}
		if err = os.Remove(filepath.Join(s.directory, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Keys lists the stored keys, sorted.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != entryExtension {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(entry.Name(), entryExtension))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Size returns the total bytes used by stored values.
func (s *FileStore) Size() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("reading store directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != entryExtension {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// Directory returns the root directory.
func (s *FileStore) Directory() string {
	return s.directory
}

// keyToFilePath maps a key to a file name that is safe on every platform.
// The escaping is reversible, so distinct keys never share a file.
func (s *FileStore) keyToFilePath(key string) string {
	return filepath.Join(s.directory, url.QueryEscape(key)+entryExtension)
}
