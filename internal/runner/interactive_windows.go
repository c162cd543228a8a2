// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// runInteractive falls back to plain pipes on Windows, where no
// pseudo-terminal is available. Output still streams incrementally.
func runInteractive(ctx context.Context, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}
