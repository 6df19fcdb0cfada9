package easyinstall

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the raw KEY=value settings from the config file and environment.
type Config struct {
	Values map[string]string
}

// envPrefix marks environment variables that override config file keys.
const envPrefix = "EASYINSTALL_"

// loadConfig reads KEY=value settings from path, then applies EASYINSTALL_*
// environment overrides. A missing file yields an empty config.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	switch file, err := os.Open(path); {
	case err == nil:
		defer file.Close()
		if err := cfg.parse(file); err != nil {
			return cfg, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return cfg, err
	}

	mergeEnvOverrides(cfg, os.Environ())
	return cfg, nil
}

// parse adds every KEY=value line of r. Blank lines, # comments and lines
// without '=' are ignored; values may be quoted.
func (c *Config) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		c.Values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(val), `"'`)
	}
	return scanner.Err()
}

func mergeEnvOverrides(cfg *Config, environ []string) {
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			cfg.Values[key] = val
		}
	}
}

// MirrorConfig describes an S3-compatible mirror for s3:// archive URLs.
type MirrorConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Flags are the command-line switches that feed InstallConfig.
type Flags struct {
	Snapshot  bool
	Devel     bool
	AssumeYes bool
	Debug     bool
	From      Phase
}

// InstallConfig is resolved once at startup and never modified afterwards.
type InstallConfig struct {
	Prefix      string
	UseSnapshot bool
	DevelMode   bool
	StartPhase  Phase

	BuildDir    string
	ReleaseURL  string
	SnapshotURL string
	AssumeYes   bool
	Debug       bool
	Mirror      MirrorConfig
}

// NewInstallConfig combines the loaded settings and the command-line flags.
// --devel implies --snapshot and switches to the development prefix.
func NewInstallConfig(cfg *Config, f Flags) InstallConfig {
	get := func(key, def string) string {
		if v := cfg.Values[key]; v != "" {
			return v
		}
		return def
	}

	ic := InstallConfig{
		Prefix:      get("EASYINSTALL_PREFIX", defaultPrefix),
		UseSnapshot: f.Snapshot,
		StartPhase:  PhaseDownload,
		BuildDir:    get("EASYINSTALL_BUILD_DIR", defaultBuild),
		ReleaseURL:  get("EASYINSTALL_RELEASE_URL", releaseURL),
		SnapshotURL: get("EASYINSTALL_SNAPSHOT_URL", snapshotURL),
		AssumeYes:   f.AssumeYes,
		Debug:       f.Debug || cfg.Values["EASYINSTALL_DEBUG"] == "1",
		Mirror: MirrorConfig{
			Endpoint:        cfg.Values["EASYINSTALL_S3_ENDPOINT"],
			Region:          get("EASYINSTALL_S3_REGION", "auto"),
			AccessKeyID:     cfg.Values["EASYINSTALL_S3_ACCESS_KEY_ID"],
			SecretAccessKey: cfg.Values["EASYINSTALL_S3_SECRET_ACCESS_KEY"],
		},
	}
	if f.Devel {
		ic.DevelMode = true
		ic.UseSnapshot = true
		ic.Prefix = get("EASYINSTALL_DEVEL_PREFIX", develPrefix)
	}
	if f.From.Valid() {
		ic.StartPhase = f.From
	}
	return ic
}

// DownloadURL is the archive location for this configuration.
func (c InstallConfig) DownloadURL() string {
	if c.UseSnapshot {
		return c.SnapshotURL
	}
	return c.ReleaseURL
}

// ArchivePath is where the downloaded archive is stored.
func (c InstallConfig) ArchivePath() string {
	return filepath.Join(c.BuildDir, archiveName)
}
