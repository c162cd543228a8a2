// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/wafrelka/cookersh/internal/apply"
	"github.com/wafrelka/cookersh/internal/bundle"
	"github.com/wafrelka/cookersh/internal/config"
	"github.com/wafrelka/cookersh/internal/engine"
	"github.com/wafrelka/cookersh/internal/runner"
)

// runProvision drives the pipeline: probe the target architecture,
// fetch the pinned engine, package the recipes, then apply them on the
// target. Every stage failure aborts the run; there are no retries.
func runProvision(ctx context.Context, inv Invocation, stdout io.Writer) error {
	logger := newLogger()

	if inv.Local {
		logger.Info("provisioning local machine")
	} else {
		logger.Info("provisioning remote host", "destination", inv.Destination)
	}
	logger.Info("using recipes", "recipes", inv.Recipes)
	if len(inv.Configs) > 0 {
		logger.Info("merging config fragments", "configs", inv.Configs)
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "cookersh-*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	var r runner.Runner
	if inv.Local {
		r = runner.NewLocalRunner()
	} else {
		r = runner.NewSSHRunner(inv.Destination, inv.ForwardAgent)
	}

	return provision(ctx, inv, r, settings.CacheDir, workDir, stdout, logger)
}

// provision runs the pipeline stages against an already-constructed
// runner: probe, fetch, package, apply.
func provision(ctx context.Context, inv Invocation, r runner.Runner, cacheDir, workDir string, stdout io.Writer, logger *log.Logger) error {
	arch, err := engine.DetectArch(ctx, r)
	if err != nil {
		return err
	}
	logger.Info("detected target architecture", "arch", arch)

	cache := engine.NewCache(cacheDir)
	enginePath, err := cache.Fetch(ctx, arch, workDir)
	if err != nil {
		return err
	}

	src, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	packager := &bundle.Packager{
		Source:  src,
		Configs: inv.Configs,
		Ignore:  bundle.NewGitignoreMatcher(src),
	}
	archivePath, err := packager.Build(workDir)
	if err != nil {
		return err
	}

	applier := &apply.Applier{Runner: r, Out: runner.NewRemoteWriter(stdout)}
	opts := apply.Options{
		UserMode:     inv.UserMode,
		ForwardAgent: inv.ForwardAgent,
		DryRun:       inv.DryRun,
		Env:          inv.Env,
		Recipes:      inv.Recipes,
	}
	if err := applier.Apply(ctx, workDir, archivePath, enginePath, opts); err != nil {
		return exitCodeError(err)
	}

	fmt.Fprintln(stdout, SuccessStyle.Render("recipes applied"))
	return nil
}

// newLogger builds the stderr status logger. All informational echoes
// stay out of stdout so the engine's output remains the only payload
// there.
func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
}

// exitCodeError preserves the engine's exit status: when the failure
// chain bottoms out in a process exit, the same code becomes cookersh's
// own exit code.
func exitCodeError(err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() > 0 {
		return &ExitError{Code: ee.ExitCode(), Err: err}
	}
	return err
}
