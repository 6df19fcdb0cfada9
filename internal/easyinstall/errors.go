package easyinstall

import (
	"errors"
	"fmt"
)

var (
	// ErrPrerequisiteMissing means a resumed run could not find the artifact an
	// earlier, skipped phase should have left on disk.
	ErrPrerequisiteMissing = errors.New("prerequisite missing")

	// ErrAcquisitionFailed means every download method was exhausted.
	ErrAcquisitionFailed = errors.New("archive acquisition failed")

	// ErrSourceNotFound means no version-tagged source directory exists in the build directory.
	ErrSourceNotFound = errors.New("unpacked source directory not found")

	// ErrMissingToolchain means a required build tool is not installed.
	ErrMissingToolchain = errors.New("required tool missing")

	// ErrUnknownInitLayout means neither known rc<N>.d layout exists.
	ErrUnknownInitLayout = errors.New("unknown init.d layout")

	// ErrNoCredential means the password prompt could not be read.
	ErrNoCredential = errors.New("no root credential")
)

// CommandError reports a subprocess whose non-zero exit the caller treats as fatal.
type CommandError struct {
	Command  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("could not execute %q: exit status %d", e.Command, e.ExitCode)
}

// PhaseError wraps the failure that halted the pipeline.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *PhaseError) Unwrap() error {
	return e.Err
}

// checkExit converts a non-zero result into a *CommandError.
func checkExit(command string, res ExecResult) error {
	if res.ExitCode != 0 {
		return &CommandError{Command: command, ExitCode: res.ExitCode}
	}
	return nil
}
