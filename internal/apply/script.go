// SPDX-License-Identifier: MPL-2.0

// Package apply ships the bundle to the target and runs the generated
// bootstrap script that hands control to the engine.
package apply

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/wafrelka/cookersh/internal/bundle"
	"github.com/wafrelka/cookersh/internal/engine"
)

// Options describes one provisioning run from the engine's point of
// view. It is derived from the parsed invocation and immutable here.
type Options struct {
	// UserMode skips privilege elevation.
	UserMode bool
	// ForwardAgent carries the ssh agent socket into the elevated
	// engine invocation.
	ForwardAgent bool
	// DryRun asks the engine to report changes without applying them.
	DryRun bool
	// Env holds KEY=VALUE assignments for the engine, order preserved.
	Env []string
	// Recipes are the recipe file names handed to the engine.
	Recipes []string
}

// agentSockAssignment re-exports the local agent socket under sudo. The
// parameter expansion must happen on the target, so it is embedded
// unquoted.
const agentSockAssignment = `SSH_AUTH_SOCK="${SSH_AUTH_SOCK:-}"`

// BuildScript renders the bootstrap program executed on the target. The
// script resolves its own directory, schedules that directory for
// removal on exit, unpacks the bundle, and invokes the engine.
func BuildScript(opts Options) (string, error) {
	invocation, err := engineCommand(opts)
	if err != nil {
		return "", err
	}

	lines := []string{
		"#!/bin/sh",
		"set -ue",
		`cd "$(dirname "$0")"`,
		`work_dir="$(pwd)"`,
		`trap 'rm -rf "$work_dir"' EXIT`,
		"tar -xzf " + bundle.ArchiveName,
		"chmod +x " + engine.BinaryName,
		invocation,
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// engineCommand composes the single engine invocation line: optional
// privilege wrapper, environment assignments, then the engine and its
// arguments, each word quoted for the target shell.
func engineCommand(opts Options) (string, error) {
	assignments := []string{}
	if opts.ForwardAgent {
		assignments = append(assignments, agentSockAssignment)
	}
	quotedEnv, err := quoteWords(opts.Env)
	if err != nil {
		return "", err
	}
	assignments = append(assignments, quotedEnv...)

	words := []string{"./" + engine.BinaryName, "local", "-y", bundle.ConfigFileName}
	if opts.DryRun {
		words = append(words, "--dry-run")
	}
	words = append(words, opts.Recipes...)
	quoted, err := quoteWords(words)
	if err != nil {
		return "", err
	}

	var cmd []string
	switch {
	case !opts.UserMode:
		// sudo accepts leading VAR=value words as environment
		// assignments for the elevated command.
		cmd = append([]string{"sudo"}, assignments...)
	case len(assignments) > 0:
		cmd = append([]string{"env"}, assignments...)
	}
	cmd = append(cmd, quoted...)

	return strings.Join(cmd, " "), nil
}

// quoteWords shell-quotes every word for a POSIX shell. KEY=VALUE
// assignments stay recognizable because quoting never touches an
// unspecial KEY= prefix.
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
