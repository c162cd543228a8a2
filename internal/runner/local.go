// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LocalRunner executes commands directly on the invoking machine. File
// transfer degrades to a plain filesystem copy.
type LocalRunner struct{}

// NewLocalRunner creates a runner that targets the local machine.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Output runs the command and returns its stdout. Stderr is folded into
// the error message on failure.
func (r *LocalRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w%s", name, err, stderrDetail(stderr.String()))
	}
	return stdout.String(), nil
}

// RunInteractive runs the command under a pseudo-terminal, copying its
// combined output into out.
func (r *LocalRunner) RunInteractive(ctx context.Context, out io.Writer, name string, args ...string) error {
	return runInteractive(ctx, out, name, args...)
}

// SendFiles copies each path into destDir, preserving file modes.
func (r *LocalRunner) SendFiles(ctx context.Context, destDir string, paths ...string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(destDir, filepath.Base(p))
		if err := copyFile(p, dest); err != nil {
			return fmt.Errorf("copying %s to %s: %w", p, destDir, err)
		}
	}
	return nil
}

// copyFile copies src to dest with src's permission bits.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// stderrDetail formats captured stderr for inclusion in an error message.
func stderrDetail(stderr string) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return ""
	}
	return ": " + s
}
