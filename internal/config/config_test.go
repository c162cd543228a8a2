// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COOKERSH_CACHE_DIR", "/srv/cookersh-cache")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.CacheDir != "/srv/cookersh-cache" {
		t.Errorf("CacheDir = %q, want %q", settings.CacheDir, "/srv/cookersh-cache")
	}
}

func TestLoad_XDGDefault(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG convention only applies to Linux and others")
	}

	t.Setenv("COOKERSH_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/home/someone/.cache")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join("/home/someone/.cache", AppName)
	if settings.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", settings.CacheDir, want)
	}
}
