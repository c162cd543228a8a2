// SPDX-License-Identifier: MPL-2.0

package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/wafrelka/cookersh/internal/runner"
)

// ScriptName is the bootstrap file placed next to the bundle on the
// target.
const ScriptName = "apply.sh"

// Applier delivers the work directory artifacts to the target and runs
// the bootstrap script there.
type Applier struct {
	// Runner executes commands against the target.
	Runner runner.Runner
	// Out receives the engine's streamed output, typically wrapped in a
	// prefix writer.
	Out io.Writer
}

// Apply executes the delivery sequence: write the bootstrap script into
// workDir, create a temporary directory on the target, transfer the
// archive, engine, and script, then run the script under a terminal.
// A target directory created before a failed transfer is not removed;
// the debris is left for inspection.
func (a *Applier) Apply(ctx context.Context, workDir, archivePath, enginePath string, opts Options) error {
	script, err := BuildScript(opts)
	if err != nil {
		return err
	}

	scriptPath := filepath.Join(workDir, ScriptName)
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		return fmt.Errorf("writing bootstrap script: %w", err)
	}

	out, err := a.Runner.Output(ctx, "mktemp", "-d")
	if err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}
	destDir := strings.TrimSpace(out)
	if destDir == "" {
		return errors.New("creating target directory: empty mktemp output")
	}

	if err := a.Runner.SendFiles(ctx, destDir, archivePath, enginePath, scriptPath); err != nil {
		return fmt.Errorf("could not copy recipes: %w", err)
	}

	if err := a.Runner.RunInteractive(ctx, a.Out, "sh", path.Join(destDir, ScriptName)); err != nil {
		return fmt.Errorf("could not apply recipes: %w", err)
	}
	return nil
}
