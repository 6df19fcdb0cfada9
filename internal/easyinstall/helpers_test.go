package easyinstall

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestExecutor returns an executor whose observer output is captured.
// Programs in bin (if any) shadow the system PATH.
func newTestExecutor(t *testing.T, bin string) (*Executor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e := &Executor{Context: context.Background(), Stdout: &out, Stderr: io.Discard}
	if bin != "" {
		e.Env = append(os.Environ(), "PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	return e, &out
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// lookPathOf resolves only the listed program names.
func lookPathOf(names ...string) LookPathFunc {
	return func(file string) (string, error) {
		if slices.Contains(names, file) {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}
}

// fakeSudo writes a sudo stand-in that reads the password line from stdin,
// logs the password and the command, then runs the command.
func fakeSudo(t *testing.T, dir string) (tool, log string) {
	t.Helper()
	log = filepath.Join(dir, "sudo.log")
	tool = writeScript(t, dir, "fake-sudo", `[ "$1" = "-S" ] || exit 99
shift
read pw
echo "pw=$pw" >> `+log+`
echo "$*" >> `+log+`
exec /bin/sh -c "$*"`)
	return tool, log
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// newTestRoot returns a non-root session elevating through fakeSudo.
func newTestRoot(t *testing.T, exec *Executor, dir string) (*RootSession, string) {
	t.Helper()
	tool, log := fakeSudo(t, dir)
	root := NewRootSession(exec, &scriptedSecrets{answers: []string{"hunter2"}})
	root.Tool = tool
	root.IsRoot = func() bool { return false }
	return root, log
}

type scriptedSecrets struct {
	answers []string
	err     error
	calls   int
}

func (s *scriptedSecrets) ReadSecret(string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

type scriptedPrompt struct {
	answer    bool
	questions []string
}

func (p *scriptedPrompt) Confirm(question string, _ bool) bool {
	p.questions = append(p.questions, question)
	return p.answer
}
