package easyinstall

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options collects everything the root command parses.
type options struct {
	configPath string
	flags      Flags
}

// fromFlag is a boolean --from-<phase> switch. Every switch shares one
// target, which only moves forward: the latest phase named wins whatever
// the order on the command line.
type fromFlag struct {
	target *Phase
	phase  Phase
	set    bool
}

func (f *fromFlag) String() string { return strconv.FormatBool(f.set) }
func (f *fromFlag) Type() string   { return "bool" }

func (f *fromFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	f.set = v
	if v && f.phase > *f.target {
		*f.target = f.phase
	}
	return nil
}

func addFromFlags(fs *pflag.FlagSet, target *Phase) {
	for _, p := range AllPhases[1:] {
		name := "from-" + p.String()
		fs.Var(&fromFlag{target: target, phase: p}, name, fmt.Sprintf("Start at the '%s' phase", p))
		fs.Lookup(name).NoOptDefVal = "true"
	}
}

const longHelp = `Cherokee's assisted deployment tool.

Downloads the latest Cherokee release, builds and installs it, and
registers it with the system's service manager so it starts at boot.

Development:
  --from-unpack, --from-compile, --from-install, --from-initd and
  --from-report resume at the named phase, using what a previous run left
  in the build directory.

Report bugs to: http://bugs.cherokee-project.com/`

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &options{configPath: ConfigFile}

	cmd := &cobra.Command{
		Use:           "easyinstall",
		Short:         "Build, install and register the Cherokee web server",
		Long:          longHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, opts, cmd.OutOrStdout())
		},
	}
	cmd.Version = fmt.Sprintf("%s (built %s)", version, buildDate)

	fs := cmd.Flags()
	fs.BoolVar(&opts.flags.Snapshot, "snapshot", false, "Compile latest development snapshot")
	fs.BoolVar(&opts.flags.Devel, "devel", false, "Snapshot with debug under "+develPrefix)
	fs.BoolVarP(&opts.flags.AssumeYes, "yes", "y", false, "Answer yes to every question")
	fs.BoolVar(&opts.flags.Debug, "debug", false, "Print debug output")
	fs.StringVar(&opts.configPath, "config", ConfigFile, "Configuration file")
	addFromFlags(fs, &opts.flags.From)
	return cmd
}

// run resolves the configuration, checks the toolchain and drives the pipeline.
func run(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.configPath, err)
	}
	ic := NewInstallConfig(cfg, opts.flags)
	Debug = ic.Debug
	debugf("Configuration: %+v\n", ic)

	exec := NewExecutor(ctx)
	exec.Stdout = out
	stdin := bufio.NewReader(os.Stdin)
	root := NewRootSession(exec, NewTerminalSecretReader(os.Stdin, stdin, out))

	var prompt Prompter = assumeYes{}
	if !ic.AssumeYes {
		prompt = NewPrompter(stdin, out)
	}

	paths := DefaultServicePaths()
	platform := HostPlatform(paths)
	debugf("Service manager: %s\n", platform)

	prereq := &Prerequisites{Exec: exec, Root: root, Prompt: prompt, Platform: platform}
	if err := prereq.Check(); err != nil {
		return err
	}

	var mirror *MirrorClient
	if strings.HasPrefix(ic.DownloadURL(), "s3://") {
		if mirror, err = NewMirrorClient(ctx, ic.Mirror); err != nil {
			return err
		}
	}

	installer := NewInstaller(ic, InstallerDeps{
		Exec:     exec,
		Root:     root,
		Prompt:   prompt,
		Platform: platform,
		Paths:    paths,
		Mirror:   mirror,
	})
	pipeline := &Pipeline{StartPhase: ic.StartPhase, Stages: installer}
	return pipeline.Run(ctx)
}

// exitCode maps a run result to the process exit status. A resumed run whose
// artifacts are gone returns quietly.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrPrerequisiteMissing):
		return 0
	default:
		return 1
	}
}

// watchSignals cancels ctx on the first interrupt. While a critical phase is
// running the first interrupt only warns; a second one always exits 130.
func watchSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	// Register to receive SIGINT (Ctrl+C) and SIGTERM (kill command)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					colArrow.Print("\n-> ")
					colError.Printf("Critical operation in progress (install or service registration). Press Ctrl+C AGAIN to force exit NOW.\n")

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.\n")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				}

				colArrow.Print("\n-> ")
				color.Danger.Printf("Received %v. Cancelling gracefully\n", sig)
				cancel()

				// NOTE: ctx is already cancelled here, only a second signal matters
				select {
				case <-sigs:
					colArrow.Print("\n-> ")
					color.Danger.Printf("Second interrupt received. Forcing immediate exit.\n")
					os.Exit(130)
				case <-time.After(2 * time.Second):
					colArrow.Print("\n-> ")
					color.Danger.Printf("Graceful shutdown timeout. Exiting.\n")
					os.Exit(1)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Main is the CLI entrypoint for cmd/easyinstall.
func Main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchSignals(ctx, cancel)

	cmd := newRootCmd(ctx)
	err := cmd.Execute()
	code := exitCode(err)
	switch {
	case err == nil:
	case code == 0:
		cPrintf(colWarn, "%v\n", err)
	default:
		fmt.Println()
		cPrintf(colError, "ERROR: %v\n", err)
	}
	cancel()
	os.Exit(code)
}
