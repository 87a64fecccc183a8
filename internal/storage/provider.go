// Package storage defines the workspace file-system abstraction used for
// reading exports and publishing chart images.
package storage

import "github.com/starford/gantt/internal/models"

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root.
type Provider interface {
	// List returns metadata for every file under dir whose extension is in exts.
	List(dir string, exts ...string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Abs resolves path to an absolute file-system path inside the root.
	Abs(path string) (string, error)
}
