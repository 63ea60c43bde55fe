// Package storage persists engine settings and analysis results in a
// BadgerDB database under the user's data directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName    = "luna"
	dataDirEnv = "LUNA_DATA_DIR"
)

// GetDataDir returns the data directory for the application, creating it if
// needed. LUNA_DATA_DIR wins when set; otherwise the platform default is used:
// - macOS: ~/Library/Application Support/luna/
// - Linux: ~/.local/share/luna/
// - Windows: %APPDATA%/luna/
func GetDataDir() (string, error) {
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return ensureDir(dir)
	}

	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Check XDG_DATA_HOME first
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return ensureDir(filepath.Join(baseDir, appName))
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}
