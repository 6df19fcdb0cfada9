package easyinstall

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// ExecResult is what every subprocess invocation hands back to its caller.
type ExecResult struct {
	Output   string
	ExitCode int
}

// Executor runs shell commands one at a time, streaming their stdout line by
// line to an observer while accumulating it for the caller.
type Executor struct {
	Context context.Context // The context to use for cancellation
	Shell   string          // Shell used as "<Shell> -c <command>"; defaults to /bin/sh
	Stdout  io.Writer       // Observer for live output; defaults to os.Stdout
	Stderr  io.Writer       // Destination of the child's stderr; defaults to os.Stderr
	Env     []string        // Environment; inherits os.Environ() when empty
}

// NewExecutor returns an Executor writing to the process' stdio.
func NewExecutor(ctx context.Context) *Executor {
	return &Executor{Context: ctx}
}

type execOptions struct {
	dir       string
	input     []byte
	transform func(string) string
	quiet     bool
}

// ExecOption tweaks a single Execute call.
type ExecOption func(*execOptions)

// WithDir runs the command in dir.
func WithDir(dir string) ExecOption {
	return func(o *execOptions) { o.dir = dir }
}

// WithInput writes input to the command's stdin and closes it.
func WithInput(input []byte) ExecOption {
	return func(o *execOptions) { o.input = input }
}

// WithTransform rewrites every output line before it reaches the observer.
// The accumulated Output is never transformed.
func WithTransform(fn func(string) string) ExecOption {
	return func(o *execOptions) { o.transform = fn }
}

// Quiet suppresses the command echo and the observer.
func Quiet() ExecOption {
	return func(o *execOptions) { o.quiet = true }
}

// Colored is a transform that paints each line with a gookit style.
func Colored(s sprinter) func(string) string {
	return func(line string) string { return s.Sprint(line) }
}

func (e *Executor) ctx() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Executor) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

// Execute runs command through the shell and blocks until it exits.
//
// A non-zero exit status is reported in ExecResult.ExitCode and is not an
// error; the returned error only reports a command that could not be started.
func (e *Executor) Execute(command string, opts ...ExecOption) (ExecResult, error) {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	observer := e.stdout()
	if o.quiet {
		observer = io.Discard
	} else {
		fprintStyled(observer, colCommand, command)
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = o.dir
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	} else {
		cmd.Env = os.Environ()
	}
	cmd.Stderr = e.stderr()
	// isolate process group for context-based cleanup
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return ExecResult{}, fmt.Errorf("failed to connect stdout: %w", err)
	}
	var stdinPipe io.WriteCloser
	if o.input != nil {
		stdinPipe, err = cmd.StdinPipe()
		if err != nil {
			return ExecResult{}, fmt.Errorf("failed to connect stdin: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return ExecResult{}, fmt.Errorf("failed to start command: %w", err)
	}

	pgid := cmd.Process.Pid
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-e.ctx().Done():
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		case <-done:
		}
	}()

	if stdinPipe != nil {
		// The child may already be gone; a broken pipe here is fine.
		_, _ = stdinPipe.Write(o.input)
		_ = stdinPipe.Close()
	}

	var output strings.Builder
	reader := bufio.NewReader(stdoutPipe)
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			output.WriteString(line)
			text := strings.TrimRight(line, "\r\n")
			if o.transform != nil {
				text = o.transform(text)
			}
			fmt.Fprintln(observer, text)
		}
		if readErr != nil {
			break
		}
	}

	res := ExecResult{Output: output.String()}
	if waitErr := cmd.Wait(); waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("waiting for command: %w", waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 && e.ctx().Err() != nil {
			return res, fmt.Errorf("command aborted: %w", e.ctx().Err())
		}
	}

	if res.ExitCode != 0 && !o.quiet {
		fmt.Fprintf(e.stdout(), "\n%s: Could not execute: %s\n", colError.Sprint("ERROR"), command)
	}
	return res, nil
}
