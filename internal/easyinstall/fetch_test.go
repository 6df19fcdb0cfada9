package easyinstall

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptTool is a download tool that logs its name and then runs body.
func scriptTool(name, log, body string) DownloadTool {
	return DownloadTool{
		Name: name,
		Command: func(url, target string) string {
			return fmt.Sprintf("echo %s >> %s; T=%s; %s", name, shellQuote(log), shellQuote(target), body)
		},
	}
}

func newTestDownloader(t *testing.T, tools []DownloadTool, available ...string) *Downloader {
	t.Helper()
	e, _ := newTestExecutor(t, "")
	d := NewDownloader(e, nil)
	d.Tools = tools
	d.LookPath = lookPathOf(available...)
	d.Progress = io.Discard
	return d
}

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDefaultDownloadToolsOrder(t *testing.T) {
	require.Len(t, DefaultDownloadTools, 2)
	assert.Equal(t, "wget", DefaultDownloadTools[0].Name)
	assert.Equal(t, "curl", DefaultDownloadTools[1].Name)
	assert.Equal(t, "wget 'http://x/a.tgz' --output-document='/tmp/a.tgz'",
		DefaultDownloadTools[0].Command("http://x/a.tgz", "/tmp/a.tgz"))
}

func TestAcquireFirstToolSucceeds(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "tools.log")
	target := filepath.Join(dir, "build", "archive.tar.gz")
	srv, hits := countingServer(t, http.StatusOK, "native")

	d := newTestDownloader(t, []DownloadTool{
		scriptTool("first", log, `printf first > "$T"`),
		scriptTool("second", log, `printf second > "$T"`),
	}, "first", "second")

	require.NoError(t, d.Acquire(context.Background(), srv.URL, target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, []string{"first"}, readLines(t, log))
	assert.Zero(t, hits.Load())
}

func TestAcquireFallsBackInOrder(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "tools.log")
	target := filepath.Join(dir, "archive.tar.gz")
	srv, hits := countingServer(t, http.StatusOK, "native")

	d := newTestDownloader(t, []DownloadTool{
		scriptTool("missing", log, `exit 0`),
		scriptTool("broken", log, `exit 1`),
		scriptTool("working", log, `printf working > "$T"`),
	}, "broken", "working")

	require.NoError(t, d.Acquire(context.Background(), srv.URL, target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "working", string(data))
	assert.Equal(t, []string{"broken", "working"}, readLines(t, log))
	assert.Zero(t, hits.Load())
}

func TestAcquireNativeFallback(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "tools.log")
	target := filepath.Join(dir, "archive.tar.gz")
	srv, hits := countingServer(t, http.StatusOK, "native payload")

	d := newTestDownloader(t, []DownloadTool{scriptTool("broken", log, `exit 1`)}, "broken")

	require.NoError(t, d.Acquire(context.Background(), srv.URL, target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "native payload", string(data))
	assert.Equal(t, int32(1), hits.Load())
}

func TestAcquireNoToolsInstalled(t *testing.T) {
	target := filepath.Join(t.TempDir(), "archive.tar.gz")
	srv, _ := countingServer(t, http.StatusOK, "native")

	d := newTestDownloader(t, DefaultDownloadTools)

	require.NoError(t, d.Acquire(context.Background(), srv.URL, target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "native", string(data))
}

func TestAcquireAllMethodsFail(t *testing.T) {
	dir := t.TempDir()
	srv, _ := countingServer(t, http.StatusNotFound, "gone")

	d := newTestDownloader(t, []DownloadTool{scriptTool("broken", filepath.Join(dir, "log"), `exit 1`)}, "broken")

	err := d.Acquire(context.Background(), srv.URL, filepath.Join(dir, "archive.tar.gz"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
	assert.Contains(t, err.Error(), "404")
}

func TestAcquireS3WithoutMirror(t *testing.T) {
	d := newTestDownloader(t, nil)

	err := d.Acquire(context.Background(), "s3://bucket/cherokee.tar.gz", filepath.Join(t.TempDir(), "a.tar.gz"))
	assert.ErrorIs(t, err, ErrAcquisitionFailed)
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw, bucket, key string
		wantErr          bool
	}{
		{"s3://releases/cherokee/latest.tar.gz", "releases", "cherokee/latest.tar.gz", false},
		{"s3://releases/a", "releases", "a", false},
		{"s3://releases/", "", "", true},
		{"s3:///key", "", "", true},
		{"https://releases/key", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, key, err := parseS3URL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
