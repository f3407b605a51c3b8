package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each slot in its own file under Dir. Writes go to a
// temporary file that is renamed over the slot, so a crash mid-write leaves
// the previous value intact.
type FileStore struct {
	Dir string
}

// NewFileStore constructs a file-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Get reads the slot file.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return data, true, nil
}

// Set atomically replaces the slot file.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp slot %s: %w", key, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		cleanup()
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	return nil
}

// Ping ensures the storage directory exists and is a directory.
func (s *FileStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	info, err := os.Stat(s.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.Dir)
	}
	return nil
}
