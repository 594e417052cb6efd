package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// BaseDirName is the directory under the system temp directory that holds
// applaunch state shared between test binaries (port locks, default logs).
const BaseDirName = "applaunch"

// EnsureDir creates a directory and all parent directories if they don't exist.
// Uses mode 0755. Returns nil if directory already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// TempSubdir returns <os.TempDir()>/applaunch/<name> and creates it.
func TempSubdir(name string) (string, error) {
	dir := filepath.Join(os.TempDir(), BaseDirName, name)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}
