package easyinstall

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Installer wires the real components into the pipeline's Stages.
type Installer struct {
	Config     InstallConfig
	Exec       *Executor
	Downloader *Downloader
	Unpacker   *Unpacker
	Builder    *Builder
	Registrar  Registrar
	Reporter   *Reporter
}

// InstallerDeps are the session-wide collaborators shared by every component.
type InstallerDeps struct {
	Exec     *Executor
	Root     *RootSession
	Prompt   Prompter
	LookPath LookPathFunc
	Platform Platform
	Paths    ServicePaths
	Mirror   *MirrorClient
}

// NewInstaller builds the production Stages for cfg.
func NewInstaller(cfg InstallConfig, deps InstallerDeps) *Installer {
	if deps.LookPath == nil {
		deps.LookPath = exec.LookPath
	}
	dl := NewDownloader(deps.Exec, deps.Mirror)
	dl.LookPath = deps.LookPath

	return &Installer{
		Config:     cfg,
		Exec:       deps.Exec,
		Downloader: dl,
		Unpacker: &Unpacker{
			Exec:     deps.Exec,
			LookPath: deps.LookPath,
			Name:     productName,
		},
		Builder: &Builder{
			Exec:     deps.Exec,
			Root:     deps.Root,
			LookPath: deps.LookPath,
			Config:   cfg,
		},
		Registrar: NewRegistrar(deps.Platform, RegistrarEnv{
			Config: cfg,
			Exec:   deps.Exec,
			Root:   deps.Root,
			Prompt: deps.Prompt,
			Paths:  deps.Paths,
		}),
		Reporter: &Reporter{Exec: deps.Exec, Config: cfg},
	}
}

// Download wipes the build directory and fetches a fresh archive into it.
func (in *Installer) Download(ctx context.Context) (string, error) {
	buildDir := in.Config.BuildDir
	archive := in.Config.ArchivePath()

	// Clean up
	for _, path := range []string{buildDir, archive} {
		if _, err := in.Exec.Execute("rm -rf "+shellQuote(path), WithTransform(Colored(colRemove))); err != nil {
			return "", err
		}
	}
	cmd := "mkdir -p " + shellQuote(buildDir)
	res, err := in.Exec.Execute(cmd, WithTransform(Colored(colMkdir)))
	if err != nil {
		return "", err
	}
	if err := checkExit(cmd, res); err != nil {
		return "", err
	}

	if err := in.Downloader.Acquire(ctx, in.Config.DownloadURL(), archive); err != nil {
		return "", err
	}
	return archive, nil
}

// LocateArchive finds the archive a previous run downloaded.
func (in *Installer) LocateArchive() (string, error) {
	archive := in.Config.ArchivePath()
	info, err := os.Stat(archive)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", archive)
	}
	return archive, nil
}

func (in *Installer) Unpack(_ context.Context, archive string) (string, error) {
	return in.Unpacker.Unpack(archive, in.Config.BuildDir)
}

// LocateSource finds the source tree a previous run unpacked.
func (in *Installer) LocateSource() (string, error) {
	return FindUnpackedSource(in.Config.BuildDir, productName)
}

func (in *Installer) Compile(_ context.Context, srcDir string) error {
	return in.Builder.Compile(srcDir)
}

func (in *Installer) Install(_ context.Context, srcDir string) error {
	return in.Builder.Install(srcDir)
}

func (in *Installer) RegisterService(_ context.Context) error {
	debugf("Registering with %s\n", in.Registrar.Platform())
	return in.Registrar.Register()
}

func (in *Installer) Report(_ context.Context) error {
	return in.Reporter.Report()
}
