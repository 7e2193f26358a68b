// Package gistool invokes the external geospatial inspection tools and
// exposes their text reports to the ingestion pipelines.
//
// Invocations are blocking from the caller's point of view: the pipeline
// goroutine suspends until the tool exits. No timeout is enforced on these
// processes; callers that need one pass a bounded context.
package gistool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external tool and returns its combined output.
// Implementations must return a non-nil error when the tool cannot be
// started or exits abnormally.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs tools as child processes.
type ExecRunner struct{}

// Run executes the named tool, returning stdout+stderr combined. The tool's
// output is included in the error so failure messages carry the tool's own
// diagnostics.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%s: %w: %s", name, err, out.String())
	}
	return out.String(), nil
}
