// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// runInteractive starts the command attached to a pseudo-terminal and
// streams its combined output into out until the command exits. Stdin of
// the invoking process is forwarded into the terminal so interactive
// prompts (sudo passwords, confirmations) keep working.
func runInteractive(ctx context.Context, out io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("starting %s on a pty: %w", name, err)
	}
	defer ptmx.Close()

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()

	// The read side returns EIO once the child closes its end; that is
	// the normal end-of-stream signal for a pty, not a failure.
	_, _ = io.Copy(out, ptmx)

	return cmd.Wait()
}
