// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"mvdan.cc/sh/v3/syntax"
)

// SSHRunner executes commands on a remote host through the system ssh
// and scp clients. Command words are passed as a structured argument
// vector to the local client; only the words that cross the remote shell
// boundary are quoted.
type SSHRunner struct {
	// Host is the ssh destination ("host" or "user@host").
	Host string
	// ForwardAgent adds -A to every ssh invocation so the local
	// credential agent socket is available on the remote side.
	ForwardAgent bool
}

// NewSSHRunner creates a runner that targets host over ssh.
func NewSSHRunner(host string, forwardAgent bool) *SSHRunner {
	return &SSHRunner{Host: host, ForwardAgent: forwardAgent}
}

// Output runs the command on the remote host and returns its stdout.
func (r *SSHRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	sshArgs, err := r.sshArgs(false, name, args)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "ssh", sshArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s on %s: %w%s", name, r.Host, err, stderrDetail(stderr.String()))
	}
	return stdout.String(), nil
}

// RunInteractive runs the command on the remote host with a forced
// remote terminal (-t), itself attached to a local pseudo-terminal so
// the allocation succeeds even when cookersh's output is a pipe.
func (r *SSHRunner) RunInteractive(ctx context.Context, out io.Writer, name string, args ...string) error {
	sshArgs, err := r.sshArgs(true, name, args)
	if err != nil {
		return err
	}
	return runInteractive(ctx, out, "ssh", sshArgs...)
}

// SendFiles copies local files into destDir on the remote host via scp.
func (r *SSHRunner) SendFiles(ctx context.Context, destDir string, paths ...string) error {
	cmd := exec.CommandContext(ctx, "scp", r.scpArgs(destDir, paths)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("copying files to %s: %w%s", r.Host, err, stderrDetail(stderr.String()))
	}
	return nil
}

// sshArgs composes the local ssh argument vector for a remote command.
// The remote words are shell-quoted because ssh joins them with spaces
// and hands the result to the remote shell.
func (r *SSHRunner) sshArgs(interactive bool, name string, args []string) ([]string, error) {
	sshArgs := []string{}
	if interactive {
		sshArgs = append(sshArgs, "-tt")
	}
	if r.ForwardAgent {
		sshArgs = append(sshArgs, "-A")
	}
	sshArgs = append(sshArgs, r.Host, "--")

	quoted, err := quoteWords(append([]string{name}, args...))
	if err != nil {
		return nil, err
	}
	return append(sshArgs, quoted...), nil
}

// scpArgs composes the scp argument vector for a batch copy into destDir.
func (r *SSHRunner) scpArgs(destDir string, paths []string) []string {
	scpArgs := []string{"-q"}
	scpArgs = append(scpArgs, paths...)
	return append(scpArgs, r.Host+":"+destDir)
}

// quoteWords shell-quotes every word for a POSIX shell.
func quoteWords(words []string) ([]string, error) {
	quoted := make([]string, len(words))
	for i, w := range words {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return nil, fmt.Errorf("quoting %q: %w", w, err)
		}
		quoted[i] = q
	}
	return quoted, nil
}
