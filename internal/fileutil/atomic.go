// Package fileutil provides filesystem helpers shared by the persistence
// layer.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = errors.New("path is empty")

// WriteAtomic replaces the file at path with data without ever exposing a
// partial write: the bytes are staged in a sibling file, flushed to disk, and
// swapped into place with a rename. On any failure the original file is left
// untouched.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)

	staging, err := os.CreateTemp(dir, filepath.Base(path)+".pending-*")
	if err != nil {
		return fmt.Errorf("staging file in %s: %w", dir, err)
	}
	stagingPath := staging.Name()

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = staging.Close()
		_ = os.Remove(stagingPath)
	}()

	if _, err = staging.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", stagingPath, err)
	}
	if err = staging.Chmod(perm); err != nil {
		return fmt.Errorf("applying mode to %s: %w", stagingPath, err)
	}
	if err = staging.Sync(); err != nil {
		return fmt.Errorf("flushing %s: %w", stagingPath, err)
	}
	if err = staging.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", stagingPath, err)
	}

	if err = os.Rename(stagingPath, path); err != nil { //nolint:gosec // G703: path comes from the store, not user input
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	committed = true

	// Rename durability needs the directory flushed too; skip silently
	// where the platform refuses.
	if dirFile, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from the store path
		_ = dirFile.Sync()
		_ = dirFile.Close()
	}

	return nil
}
