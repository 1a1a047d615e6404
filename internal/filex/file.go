// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, if missing,
// and returns it.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// IsFileDSN reports whether a SQLite DSN names a plain file on disk.
func IsFileDSN(dsn string) bool {
	if dsn == "" || dsn == ":memory:" {
		return false
	}
	return len(dsn) < 5 || dsn[:5] != "file:"
}
