package easyinstall

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCollectsOutput(t *testing.T) {
	e, out := newTestExecutor(t, "")

	res, err := e.Execute("echo hello; echo world")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\nworld\n", res.Output)
	assert.Contains(t, out.String(), "echo hello; echo world")
	assert.Contains(t, out.String(), "world")
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	e, out := newTestExecutor(t, "")

	res, err := e.Execute("echo partial; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", res.Output)
	assert.Contains(t, out.String(), "Could not execute")
}

func TestExecuteExitWithoutOutput(t *testing.T) {
	e, _ := newTestExecutor(t, "")

	res, err := e.Execute("exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
	assert.Empty(t, res.Output)
}

func TestExecuteWritesInput(t *testing.T) {
	e, _ := newTestExecutor(t, "")

	res, err := e.Execute("read line; echo got=$line", WithInput([]byte("secret\n")))
	require.NoError(t, err)
	assert.Equal(t, "got=secret\n", res.Output)
}

func TestExecuteIgnoresUnreadInput(t *testing.T) {
	e, _ := newTestExecutor(t, "")

	res, err := e.Execute("exit 0", WithInput([]byte("nobody reads this\n")))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecuteTransformOnlyAffectsObserver(t *testing.T) {
	e, out := newTestExecutor(t, "")

	res, err := e.Execute("echo hello", WithTransform(strings.ToUpper))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Output)
	assert.Contains(t, out.String(), "HELLO")
}

func TestExecuteInDir(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	e, _ := newTestExecutor(t, "")

	res, err := e.Execute("pwd", WithDir(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(res.Output))
}

func TestExecuteQuiet(t *testing.T) {
	e, out := newTestExecutor(t, "")

	res, err := e.Execute("echo hidden; exit 1", Quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "hidden\n", res.Output)
	assert.Empty(t, out.String())
}

func TestExecuteCancelledContextKillsCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e, _ := newTestExecutor(t, "")
	e.Context = ctx

	time.AfterFunc(100*time.Millisecond, cancel)
	start := time.Now()
	_, err := e.Execute("sleep 10")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))

	e, _ := newTestExecutor(t, "")
	res, err := e.Execute("printf %s " + shellQuote("a 'quoted' $HOME"))
	require.NoError(t, err)
	assert.Equal(t, "a 'quoted' $HOME", res.Output)
}
