// Package testsupport provides shared fixtures for package tests:
// temp-dir configurations, queue stores, and small comic archives.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"longbox/internal/comicarchive"
	"longbox/internal/queue"
)

// MustOpenStore opens a queue store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *queue.Store {
	t.Helper()

	store, err := queue.Open(path)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BuildArchive serializes entries into a container of the given kind.
func BuildArchive(t testing.TB, kind comicarchive.Kind, entries ...comicarchive.Entry) []byte {
	t.Helper()

	data, err := comicarchive.Write(kind, entries)
	if err != nil {
		t.Fatalf("build %s archive: %v", kind, err)
	}
	return data
}

// WriteArchive builds a container of the given kind and writes it to path,
// creating parent directories as needed.
func WriteArchive(t testing.TB, path string, kind comicarchive.Kind, entries ...comicarchive.Entry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := BuildArchive(t, kind, entries...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
