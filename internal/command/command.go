// Package command runs the external tools ytscribe delegates to (yt-dlp,
// whisper, nvidia-smi) behind a small interface so tests can fake them.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is the captured outcome of one process execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts process execution for testability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// waitDelay bounds how long Run waits for output pipes after the process is
// killed. yt-dlp leaves ffmpeg children that inherit them.
const waitDelay = 2 * time.Second

// ExecRunner executes commands via os/exec. The process is killed when ctx
// is canceled and the returned error then wraps ctx.Err().
type ExecRunner struct{}

// Run executes one command and captures stdout, stderr and the exit code.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return result, err
	}
	return result, nil
}

// Error wraps a failed invocation with the command line and the tail of
// its stderr.
type Error struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s exited %d: %v", e.Command, e.ExitCode, e.Err)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error from a runner outcome. It returns nil when err is nil.
func Wrap(name string, args []string, res Result, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Command:  name,
		Args:     args,
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
		Err:      err,
	}
}

// String renders a command line for debug logging.
func String(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
