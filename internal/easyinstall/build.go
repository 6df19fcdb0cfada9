package easyinstall

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// ConfigureFlags composes the ./configure arguments for cfg.
func ConfigureFlags(cfg InstallConfig, lookPath LookPathFunc) []string {
	flags := []string{"--prefix=" + shellQuote(cfg.Prefix)}

	// Look for gettext
	if !lookPath.has("msgfmt") {
		flags = append(flags, "--enable-nls=no")
	}
	if cfg.UseSnapshot {
		flags = append(flags, "--enable-beta")
	}
	if cfg.DevelMode {
		flags = append(flags, "--enable-trace", "CFLAGS='-ggdb3 -O0'")
	}
	return flags
}

// makeTool prefers GNU make where it is installed under its own name.
func makeTool(lookPath LookPathFunc) string {
	return lookPath.firstFound("gmake", "make")
}

// Builder drives the package's configure/make/make install steps.
type Builder struct {
	Exec     *Executor
	Root     *RootSession
	LookPath LookPathFunc
	Config   InstallConfig

	// Writable reports whether the current user can write to path.
	// Defaults to access(2) with W_OK.
	Writable func(path string) bool
}

func (b *Builder) run(command, dir string) error {
	res, err := b.Exec.Execute(command, WithDir(dir))
	if err != nil {
		return err
	}
	return checkExit(command, res)
}

func (b *Builder) make() (string, error) {
	tool := makeTool(b.LookPath)
	if tool == "" {
		return "", fmt.Errorf("%w: 'make' or 'gmake' is required for the compilation", ErrMissingToolchain)
	}
	return tool, nil
}

// Compile configures and builds srcDir. A failed configure stops before make runs.
func (b *Builder) Compile(srcDir string) error {
	configure := "./configure " + strings.Join(ConfigureFlags(b.Config, b.LookPath), " ")
	if err := b.run(configure, srcDir); err != nil {
		return err
	}
	tool, err := b.make()
	if err != nil {
		return err
	}
	return b.run(tool, srcDir)
}

func (b *Builder) writable(path string) bool {
	if b.Writable != nil {
		return b.Writable(path)
	}
	return unix.Access(path, unix.W_OK) == nil
}

// Install runs "make install", escalating when the prefix is not writable.
func (b *Builder) Install(srcDir string) error {
	tool, err := b.make()
	if err != nil {
		return err
	}
	command := tool + " install"
	if b.writable(b.Config.Prefix) {
		return b.run(command, srcDir)
	}
	return b.Root.mustRoot(command, WithDir(srcDir))
}
