// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocalRunner_Output(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX tools")
	}

	r := NewLocalRunner()
	out, err := r.Output(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Output = %q, want %q", out, "hello")
	}
}

func TestLocalRunner_Output_FailureIncludesStderr(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX tools")
	}

	r := NewLocalRunner()
	_, err := r.Output(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not carry stderr detail", err)
	}
}

func TestLocalRunner_SendFiles(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	destDir := t.TempDir()

	scriptPath := filepath.Join(srcDir, "apply.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	dataPath := filepath.Join(srcDir, "recipes.tar.gz")
	if err := os.WriteFile(dataPath, []byte("payload"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	r := NewLocalRunner()
	if err := r.SendFiles(context.Background(), destDir, scriptPath, dataPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "recipes.tar.gz"))
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("copied content = %q, want %q", got, "payload")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(destDir, "apply.sh"))
		if err != nil {
			t.Fatalf("stating copy: %v", err)
		}
		if info.Mode().Perm()&0o100 == 0 {
			t.Errorf("apply.sh mode = %v, want executable bit preserved", info.Mode())
		}
	}
}

func TestLocalRunner_SendFiles_MissingSource(t *testing.T) {
	t.Parallel()

	r := NewLocalRunner()
	err := r.SendFiles(context.Background(), t.TempDir(), "/nonexistent/recipes.tar.gz")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLocalRunner_RunInteractive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pty test in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("pty not available on windows")
	}

	r := NewLocalRunner()
	var buf bytes.Buffer
	if err := r.RunInteractive(context.Background(), &buf, "echo", "from-pty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "from-pty") {
		t.Errorf("output %q does not contain %q", buf.String(), "from-pty")
	}
}

func TestLocalRunner_RunInteractive_NonZeroExit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pty test in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("pty not available on windows")
	}

	r := NewLocalRunner()
	var buf bytes.Buffer
	err := r.RunInteractive(context.Background(), &buf, "sh", "-c", "exit 7")
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
}
