// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"io"
)

// Runner executes commands against a provisioning target. The same call
// sequence works whether the target is the local machine or a remote
// host reached over ssh.
type Runner interface {
	// Output runs a command on the target and returns its captured stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// RunInteractive runs a command on the target attached to a
	// pseudo-terminal, streaming its combined output into out as it is
	// produced. A non-zero exit from the command is returned as an error.
	RunInteractive(ctx context.Context, out io.Writer, name string, args ...string) error

	// SendFiles copies local files into destDir on the target.
	SendFiles(ctx context.Context, destDir string, paths ...string) error
}
