package build

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandRunner invokes an external process and returns its combined
// stdout/stderr. It is the seam buildus's compile/link steps are
// tested against without actually shelling out to a compiler.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// ExecRunner is the default CommandRunner, backed by os/exec. Argument
// slices are passed straight to exec.CommandContext — never assembled
// as a shell string — so no argument can be mis-parsed as a shell
// metacharacter.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("run %s %v: %w", name, args, err)
	}
	return out, nil
}
