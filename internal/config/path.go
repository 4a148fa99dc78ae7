// Package config loads application configuration from TOML files, .env files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a path. A ~ that
// cannot be resolved is left in place.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// ResolvePath expands path and anchors a relative result at baseDir, or at
// the working directory when baseDir is empty.
func ResolvePath(path, baseDir string) (string, error) {
	path = ExpandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		baseDir = wd
	}
	return filepath.Join(ExpandPath(baseDir), path), nil
}
