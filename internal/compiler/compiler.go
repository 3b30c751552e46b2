// SPDX-License-Identifier: MPL-2.0

// Package compiler implements the external compiler collaborator. The
// registry hands it one invocation per module; this package only runs the
// process and reports failure, it never retries and never inspects the
// artifacts it produces.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// ExecCompiler invokes the configured compiler binary as a subprocess with
// the positional argument contract (source, output flag, output path).
type ExecCompiler struct{}

// New returns a subprocess-backed compiler.
func New() *ExecCompiler {
	return &ExecCompiler{}
}

// Compile runs `command source outputFlag output`. A spawn failure or a
// non-zero exit is returned as a build failure, with the process's stderr
// folded into the error.
func (c *ExecCompiler) Compile(ctx context.Context, command string, source, outputFlag, output string) error {
	cmd := exec.CommandContext(ctx, command, source, outputFlag, output)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug("invoking compiler", "command", command, "source", source, "output", output)

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("compiling %q: %w: %s", source, err, detail)
		}
		return fmt.Errorf("compiling %q: %w", source, err)
	}
	return nil
}
