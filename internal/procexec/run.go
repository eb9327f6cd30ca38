// Package procexec runs short-lived helper processes (man, --help, compositor
// query tools) with a hard timeout and guaranteed cleanup.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single helper invocation when none is configured.
const DefaultTimeout = 3 * time.Second

// ErrTimeout is returned when a helper process did not finish in time.
var ErrTimeout = errors.New("subprocess timed out")

// Command describes one helper invocation.
type Command struct {
	Name string
	Args []string
	// Env entries are appended to the current environment.
	Env []string
	// Stdin, when non-empty, is fed to the process.
	Stdin string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Runner executes a command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands as real child processes.
type ExecRunner struct {
	Timeout time.Duration
}

var _ Runner = ExecRunner{}

// NewExecRunner creates a runner with the given per-call timeout.
func NewExecRunner(timeout time.Duration) ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return ExecRunner{Timeout: timeout}
}

// Run starts the command, waits for it with a deadline and kills its whole
// process group on timeout or cancellation. A non-zero exit is an error; the
// captured stdout is still returned so callers may inspect it.
func (r ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = nil
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	setProcessGroup(cmd)
	// Grandchildren holding the stdout pipe must not keep Wait blocked.
	cmd.WaitDelay = 250 * time.Millisecond

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}
	if err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w", c.Name, err)
	}
	return stdout.Bytes(), nil
}

// Available reports whether name resolves to an executable on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
