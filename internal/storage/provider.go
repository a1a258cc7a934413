// Package storage implements the scalar key-value store backing the job
// list, checklist and profile.
package storage

// Provider is the interface for raw file operations under a data root.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Root returns the absolute data directory.
	Root() string
}
