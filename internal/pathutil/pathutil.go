package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands a leading ~ to the user home directory and resolves
// the path to an absolute, cleaned form. It performs no filesystem
// mutation; the path does not have to exist.
func Normalize(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// EnsureDir creates the directory and any missing parents. An existing
// directory is not an error.
func EnsureDir(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}
