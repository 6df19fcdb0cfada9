package easyinstall

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SecretReader reads one secret answer to prompt without echoing it.
type SecretReader interface {
	ReadSecret(prompt string) (string, error)
}

// terminalSecretReader reads from a terminal with echo disabled. When stdin
// is redirected it reads a plain line from buf, which the CLI shares with the
// consent prompter so neither one swallows the other's answers.
type terminalSecretReader struct {
	in  *os.File
	buf *bufio.Reader
	out io.Writer
}

// NewTerminalSecretReader returns the SecretReader used by the CLI. buf must
// wrap in; a nil buf gets a reader of its own.
func NewTerminalSecretReader(in *os.File, buf *bufio.Reader, out io.Writer) SecretReader {
	if buf == nil {
		buf = bufio.NewReader(in)
	}
	return &terminalSecretReader{in: in, buf: buf, out: out}
}

func (r *terminalSecretReader) ReadSecret(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	fd := int(r.in.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(r.out) // New line after password entry
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	line, err := r.buf.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// RootSession runs commands with root privileges. It owns the root password,
// asked for at most once per session.
type RootSession struct {
	Exec    *Executor
	Secrets SecretReader
	Tool    string      // privilege-elevation program; defaults to sudo
	IsRoot  func() bool // defaults to os.Geteuid() == 0

	password string
}

// NewRootSession returns a session elevating through sudo.
func NewRootSession(exec *Executor, secrets SecretReader) *RootSession {
	return &RootSession{Exec: exec, Secrets: secrets, Tool: "sudo"}
}

func (s *RootSession) isRoot() bool {
	if s.IsRoot != nil {
		return s.IsRoot()
	}
	return os.Geteuid() == 0
}

// credential returns the cached password, prompting until a non-empty answer is given.
func (s *RootSession) credential() (string, error) {
	for s.password == "" {
		if s.Secrets == nil {
			return "", ErrNoCredential
		}
		answer, err := s.Secrets.ReadSecret("root's password: ")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoCredential, err)
		}
		if answer != "" {
			s.password = answer + "\n"
		}
	}
	return s.password, nil
}

// ExecuteAsRoot runs command as root. When the process is not root already the
// command is prefixed with "sudo -S" and the cached password is fed on stdin.
func (s *RootSession) ExecuteAsRoot(command string, opts ...ExecOption) (ExecResult, error) {
	if s.isRoot() {
		return s.Exec.Execute(command, opts...)
	}

	password, err := s.credential()
	if err != nil {
		return ExecResult{}, err
	}

	tool := s.Tool
	if tool == "" {
		tool = "sudo"
	}
	opts = append(opts, WithInput([]byte(password)))
	return s.Exec.Execute(tool+" -S "+command, opts...)
}

// mustRoot runs command as root and returns an error for start failures and non-zero exits.
func (s *RootSession) mustRoot(command string, opts ...ExecOption) error {
	res, err := s.ExecuteAsRoot(command, opts...)
	if err != nil {
		return err
	}
	return checkExit(command, res)
}
