// Package testutil sets up throwaway vaults and indexes for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mauropereiira/Moldavite-sub001/internal/index"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
)

// TestDB opens an index in a temporary directory. It is closed when the test
// ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "moldavite-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestVault creates a vault in a temporary directory. files maps vault paths
// to their contents and is written before returning.
func TestVault(t *testing.T, files ...map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, set := range files {
		for p, content := range set {
			if err := store.Write(p, []byte(content)); err != nil {
				t.Fatalf("seed %s: %v", p, err)
			}
		}
	}
	return dir, store
}
