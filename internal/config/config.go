// SPDX-License-Identifier: MPL-2.0

// Package config resolves cookersh's runtime settings from the
// environment, following platform directory conventions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for cache paths.
	AppName = "cookersh"

	// envPrefix scopes all environment overrides (COOKERSH_*).
	envPrefix = "COOKERSH"

	// cacheDirKey resolves to the COOKERSH_CACHE_DIR environment variable.
	cacheDirKey = "cache_dir"
)

// Settings holds the resolved runtime configuration. It is immutable
// after Load.
type Settings struct {
	// CacheDir is the root of the engine binary cache.
	CacheDir string
}

// Load resolves settings from the environment. COOKERSH_CACHE_DIR
// overrides the platform default cache directory.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	def, err := defaultCacheDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault(cacheDirKey, def)

	return &Settings{CacheDir: v.GetString(cacheDirKey)}, nil
}

// defaultCacheDir returns the cookersh cache directory using
// platform-specific conventions: Windows uses %LOCALAPPDATA%, macOS uses
// ~/Library/Caches, and Linux/others use $XDG_CACHE_HOME (defaulting to
// ~/.cache).
func defaultCacheDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(dir, AppName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Caches", AppName), nil
	default: // Linux and others
		if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
			return filepath.Join(dir, AppName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".cache", AppName), nil
	}
}
