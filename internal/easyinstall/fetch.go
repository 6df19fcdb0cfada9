package easyinstall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DownloadTool is an external program able to fetch a URL into a file.
type DownloadTool struct {
	Name    string
	Command func(url, target string) string
}

// DefaultDownloadTools is the fixed preference order: wget, then curl.
var DefaultDownloadTools = []DownloadTool{
	{
		Name: "wget",
		Command: func(url, target string) string {
			return fmt.Sprintf("wget %s --output-document=%s", shellQuote(url), shellQuote(target))
		},
	},
	{
		Name: "curl",
		Command: func(url, target string) string {
			return fmt.Sprintf("curl -L --fail %s --output %s", shellQuote(url), shellQuote(target))
		},
	},
}

// Downloader fetches remote archives, trying external tools before falling
// back to the native HTTP client.
type Downloader struct {
	Exec     *Executor
	Tools    []DownloadTool
	LookPath LookPathFunc
	Client   *http.Client
	Mirror   *MirrorClient // serves s3:// URLs; nil disables them
	Progress io.Writer     // progress bar destination; defaults to os.Stderr
}

// NewDownloader returns a Downloader using the default tool list.
func NewDownloader(exec *Executor, mirror *MirrorClient) *Downloader {
	return &Downloader{
		Exec:   exec,
		Tools:  DefaultDownloadTools,
		Client: newHttpClient(),
		Mirror: mirror,
	}
}

func newHttpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Default is 10s, slow mirrors need more.
	transport.TLSHandshakeTimeout = 30 * time.Second
	return &http.Client{Transport: transport}
}

// Acquire downloads url into target.
func (d *Downloader) Acquire(ctx context.Context, url, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}

	if strings.HasPrefix(url, "s3://") {
		if d.Mirror == nil {
			return fmt.Errorf("%w: %s needs an S3 mirror configuration", ErrAcquisitionFailed, url)
		}
		if err := d.Mirror.Download(ctx, url, target); err != nil {
			return fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
		}
		return nil
	}

	var lastErr error
	for _, tool := range d.Tools {
		if !d.LookPath.has(tool.Name) {
			debugf("%s not found, trying next download method\n", tool.Name)
			continue
		}
		cmd := tool.Command(url, target)
		res, err := d.Exec.Execute(cmd)
		if err != nil {
			lastErr = err
			continue
		}
		if res.ExitCode == 0 {
			debugf("Download successful with %s.\n", tool.Name)
			return nil
		}
		lastErr = &CommandError{Command: cmd, ExitCode: res.ExitCode}
		debugf("%s failed, falling back\n", tool.Name)
	}

	if err := d.fetchNative(ctx, url, target); err != nil {
		if lastErr != nil {
			err = errors.Join(lastErr, err)
		}
		return fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}
	return nil
}

// fetchNative streams the response body straight into target.
func (d *Downloader) fetchNative(ctx context.Context, url, target string) error {
	arrow("Downloading %s", url)

	client := d.Client
	if client == nil {
		client = newHttpClient()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", target, err)
	}
	defer out.Close()

	progress := d.Progress
	if progress == nil {
		progress = os.Stderr
	}
	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(filepath.Base(target)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	_ = bar.Finish()

	debugf("Download successful with native Go HTTP client.\n")
	return nil
}
