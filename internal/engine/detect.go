// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wafrelka/cookersh/internal/runner"
)

// DetectArch asks the target for its CPU architecture via uname. The
// trimmed output is used verbatim as the key into the release table.
func DetectArch(ctx context.Context, r runner.Runner) (string, error) {
	out, err := r.Output(ctx, "uname", "-m")
	if err != nil {
		return "", fmt.Errorf("probing target architecture: %w", err)
	}

	arch := strings.TrimSpace(out)
	if arch == "" {
		return "", errors.New("probing target architecture: empty uname output")
	}
	return arch, nil
}
