// Package storage defines the vault file-system abstraction.
package storage

import "time"

// Entry describes one file found by List.
type Entry struct {
	Path      string // relative to the vault root, slash separated
	Checksum  string
	Size      int64
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and may not escape it.
type Provider interface {
	// Root returns the absolute vault directory.
	Root() string
	// List returns every non-hidden file under dir whose name ends in one
	// of suffixes (all files when none are given).
	List(dir string, suffixes ...string) ([]Entry, error)
	// Dirs returns every non-hidden directory below dir, depth first.
	Dirs(dir string) ([]string, error)
	// Exists reports whether path exists.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path with owner-only permissions.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// MkdirAll creates dir and its parents.
	MkdirAll(dir string) error
	// RemoveAll removes dir and everything below it.
	RemoveAll(dir string) error
}
