package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFileAtomic writes data to path via a uniquely named sibling temp file
// and renames it into place, so readers never observe a partial file. The
// temp file is removed on any failure.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure destination directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, mode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// RemoveEmptyDirs deletes directories under root that contain no files,
// walking depth-first so newly emptied parents are removed too. The root
// itself is never removed.
func RemoveEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := removeEmptyTree(filepath.Join(root, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func removeEmptyTree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := removeEmptyTree(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	remaining, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return os.Remove(dir)
	}
	return nil
}
