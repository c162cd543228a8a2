// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cookersh command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version is the cookersh version (set via -ldflags).
var Version = "dev"

// DefaultRecipe is used when no recipes are named on the command line.
const DefaultRecipe = "main.rb"

var (
	userMode     bool
	forwardAgent bool
	dryRun       bool
	localMode    bool
	envVars      []string
	configPaths  []string

	// rootCmd is the whole CLI; cookersh has no subcommands.
	rootCmd = &cobra.Command{
		Use:   "cookersh [flags] <destination> [recipe...]",
		Short: "Provision hosts with mitamae recipes",
		Long: TitleStyle.Render("cookersh") + SubtitleStyle.Render(" - provision hosts with mitamae recipes") + `

cookersh packages the recipes in the current directory together with a
pinned mitamae build for the target's architecture, ships both to the
destination, and applies the recipes there with privilege elevation.

` + SubtitleStyle.Render("Examples:") + `
  cookersh web01                       Apply main.rb to web01 over ssh
  cookersh web01 roles/web.rb          Apply a specific recipe
  cookersh -l                          Provision the local machine
  cookersh -d -c prod.yaml web01       Dry run with an extra config fragment
  cookersh -e RAILS_ENV=production web01`,
		Args: validateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Past argument validation, failures are pipeline errors
			// and repeating the usage text would only bury them.
			cmd.SilenceUsage = true
			return runProvision(cmd.Context(), newInvocation(args), cmd.OutOrStdout())
		},
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&userMode, "user", "u", false, "run the engine without privilege elevation")
	rootCmd.Flags().BoolVarP(&forwardAgent, "forward-agent", "A", false, "forward the ssh agent to the destination")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "report intended changes without applying them")
	rootCmd.Flags().BoolVarP(&localMode, "local", "l", false, "provision the local machine; destination is omitted")
	rootCmd.Flags().StringArrayVarP(&envVars, "env", "e", nil, "KEY=VALUE environment variable for the engine (repeatable)")
	rootCmd.Flags().StringArrayVarP(&configPaths, "config", "c", nil, "additional config fragment to merge (repeatable)")
}

// Invocation is the parsed command line, immutable once built and
// threaded explicitly through every pipeline stage.
type Invocation struct {
	Destination  string
	Recipes      []string
	Configs      []string
	Env          []string
	UserMode     bool
	ForwardAgent bool
	DryRun       bool
	Local        bool
}

// validateArgs enforces the positional contract: a destination is
// required unless --local, and every --env value must be KEY=VALUE.
func validateArgs(cmd *cobra.Command, args []string) error {
	if !localMode && len(args) < 1 {
		return errors.New("destination is required unless --local is set")
	}
	for _, e := range envVars {
		if !strings.Contains(e, "=") {
			return fmt.Errorf("invalid --env value %q: expected KEY=VALUE", e)
		}
	}
	return nil
}

// newInvocation builds the immutable invocation from parsed flags and
// positionals. In local mode every positional is a recipe.
func newInvocation(args []string) Invocation {
	inv := Invocation{
		Configs:      configPaths,
		Env:          envVars,
		UserMode:     userMode,
		ForwardAgent: forwardAgent,
		DryRun:       dryRun,
		Local:        localMode,
	}

	if localMode {
		inv.Recipes = args
	} else {
		inv.Destination = args[0]
		inv.Recipes = args[1:]
	}
	if len(inv.Recipes) == 0 {
		inv.Recipes = []string{DefaultRecipe}
	}
	return inv
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
