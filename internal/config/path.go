package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDir picks the queue root when none is configured.
// $XDG_DATA_HOME wins when set; otherwise the platform's per-user data
// location is used, with ./data as a last resort for homeless
// processes.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "spool")
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "spool")
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "spool")
		}
		return filepath.Join(home, "AppData", "Local", "spool")
	default:
		return filepath.Join(home, ".local", "share", "spool")
	}
}
