// Package storage resolves the writable data directory used for the
// local autosave snapshot and the lock file.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const appDirName = "OilMap"

var (
	dataDirOnce sync.Once
	dataDirPath string
)

// DataDir returns the platform data directory, creating it on first use.
// OILMAP_DATA_DIR overrides the platform default.
func DataDir() string {
	dataDirOnce.Do(func() {
		dataDirPath = resolveDataDir()
		_ = os.MkdirAll(dataDirPath, 0o755)
	})
	return dataDirPath
}

// DataFile joins the data directory with a relative file name.
func DataFile(name string) string {
	return filepath.Join(DataDir(), name)
}

func resolveDataDir() string {
	if custom := os.Getenv("OILMAP_DATA_DIR"); custom != "" {
		return custom
	}

	switch runtime.GOOS {
	case "windows":
		for _, env := range []string{"APPDATA", "LOCALAPPDATA"} {
			if base := os.Getenv(env); base != "" {
				return filepath.Join(base, appDirName)
			}
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", appDirName)
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", appDirName)
		}
	}
	return "./" + appDirName
}
