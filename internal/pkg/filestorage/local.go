package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/allotment/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

// NewLocalStorage creates a new LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Save writes r to <basePath>/<subPath>/<uuid><ext>
func (ls *LocalStorage) Save(filename string, r io.Reader, subPath string) (string, error) {
	if filepath.IsAbs(subPath) || strings.Contains(subPath, "..") {
		return "", fmt.Errorf("invalid storage subdirectory: %s", subPath)
	}

	fullDirPath := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Only the extension of the client name is kept
	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(filename)))
	relPath := filepath.Join(subPath, uniqueFilename)
	dstPath := filepath.Join(ls.basePath, relPath)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().
		Str("filename", filename).
		Str("saved_as", relPath).
		Int64("bytes", written).
		Msg("File saved successfully")
	return relPath, nil
}

// GetFullPath returns the filesystem path for a path returned by Save
func (ls *LocalStorage) GetFullPath(storedPath string) string {
	if storedPath == "" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.Clean("/"+storedPath))
}
