package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultWatchlistFilePath = "data/dusthunter_watchlist.json"

// Storage is a single named slot holding the serialized watchlist.
type Storage interface {
	// Read returns the slot content. A slot that was never written
	// returns nil data and a nil error.
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileStorage keeps the slot in one file on disk.
type FileStorage struct {
	filePath string
}

// NewFileStorage creates a FileStorage. An empty path falls back to the default slot.
func NewFileStorage(filePath string) *FileStorage {
	if filePath == "" {
		filePath = defaultWatchlistFilePath
	}
	return &FileStorage{filePath: filePath}
}

// Path returns the file backing the slot.
func (s *FileStorage) Path() string {
	return s.filePath
}

// Read implements Storage.
func (s *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file %s: %w", s.filePath, err)
	}
	return data, nil
}

// Write implements Storage. The new content replaces the old one atomically
// through a rename.
func (s *FileStorage) Write(data []byte) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create watchlist dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("failed to replace watchlist file %s: %w", s.filePath, err)
	}
	return nil
}
