package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/its-dedsec/urlsentry/internal/shared/constants"
)

// defaultDataDir returns the per-user data directory for the current OS,
// following the XDG Base Directory specification on Linux/Unix.
func defaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		// Windows: %LOCALAPPDATA%\urlsentry
		baseDir := os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = os.Getenv("APPDATA")
		}
		if baseDir == "" {
			return "", fmt.Errorf("could not determine Windows data directory")
		}
		return filepath.Join(baseDir, "urlsentry"), nil

	case "darwin":
		// macOS: ~/Library/Application Support/urlsentry
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(homeDir, "Library", "Application Support", "urlsentry"), nil

	default:
		// Linux/Unix: $XDG_DATA_HOME/urlsentry > ~/.local/share/urlsentry
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			return filepath.Join(xdgDataHome, "urlsentry"), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".local", "share", "urlsentry"), nil
	}
}

// historyPath returns the location of the scan history database.
func historyPath() string {
	return filepath.Join(dataDir, constants.HistoryFileName)
}

// reportsDir returns the directory reports land in, creating it on first
// use.
func reportsDir() (string, error) {
	dir := filepath.Join(dataDir, constants.ReportsDirName)
	if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	return dir, nil
}

// defaultConfigPath returns the config file location used when --config
// is not given.
func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".urlsentry.yaml"), nil
}
