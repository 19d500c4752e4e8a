package filestorage

import "io"

// ImportsDir is the subdirectory that holds raw uploaded CSV files
const ImportsDir = "imports"

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save copies r into subPath under a generated name that keeps the
	// extension of filename, and returns the stored path relative to the
	// storage root.
	Save(filename string, r io.Reader, subPath string) (string, error)

	// GetFullPath returns the filesystem path for a stored relative path
	GetFullPath(storedPath string) string
}
