package implementation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultProgram is the just executable looked up on PATH.
const DefaultProgram = "just"

// Invocation is one run of the external formatter.
type Invocation struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
	Dir     string   `json:"dir"`
}

// NewInvocation formats the Justfile at path in place. The process runs in the
// file's parent folder and names the file by its base name.
func NewInvocation(program string, path string) Invocation {
	if program == "" {
		program = DefaultProgram
	}
	return Invocation{
		Program: program,
		Args:    []string{"--fmt", "--unstable", "--justfile", filepath.Base(path)},
		Dir:     filepath.Dir(path),
	}
}

func (self Invocation) String() string {
	return strings.Join(append([]string{self.Program}, self.Args...), " ")
}

// Runner executes an invocation and returns its standard output.
type Runner interface {
	Run(ctx context.Context, invocation Invocation) (string, error)
}

//
// ExecRunner
//

// ExecRunner runs invocations as child processes.
type ExecRunner struct {
	// Timeout bounds each run. Zero means no limit.
	Timeout time.Duration
}

// Run implements Runner
func (self ExecRunner) Run(ctx context.Context, invocation Invocation) (string, error) {
	if self.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, self.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, invocation.Program, invocation.Args...)
	command.Dir = invocation.Dir
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		exitCode := -1
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%s: %w", err.Error(), ctxErr)
		}
		return "", &ProcessError{
			Invocation: invocation,
			ExitCode:   exitCode,
			Stderr:     strings.TrimSpace(stderr.String()),
			Err:        err,
		}
	}

	return stdout.String(), nil
}

//
// ProcessError
//

// ProcessError reports a formatter process that could not start or exited non-zero.
type ProcessError struct {
	Invocation Invocation
	ExitCode   int // -1 when the process never ran to an exit status
	Stderr     string
	Err        error
}

func (self *ProcessError) Error() string {
	message := "Command failed: " + self.Invocation.String()
	if self.Stderr != "" {
		return message + "\n" + self.Stderr
	}
	return message + ": " + self.Err.Error()
}

func (self *ProcessError) Unwrap() error {
	return self.Err
}
