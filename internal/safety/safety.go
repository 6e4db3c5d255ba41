package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid path")

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// IsFilesystemRoot reports whether the normalized path is the filesystem
// root. A snapshot path that resolves here must never be deleted.
func IsFilesystemRoot(path string) bool {
	return filepath.Clean(path) == string(os.PathSeparator)
}

// ResolvesToRoot combines normalization and the root check for raw paths.
// Paths that fail to normalize are not treated as the root.
func ResolvesToRoot(path string) bool {
	p, err := NormalizePath(path)
	if err != nil {
		return false
	}
	return IsFilesystemRoot(p)
}
