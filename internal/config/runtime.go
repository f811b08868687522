package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath returns the directory holding .env, SYSTEM.md and the
// SQLite database. Relative paths are resolved against the home directory.
func GetRuntimePath() string {
	path := os.Getenv("DUSHA_RUNTIME_PATH")
	if path == "" {
		path = ".dusha"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func GetEnvPath() string {
	return filepath.Join(GetRuntimePath(), ".env")
}
