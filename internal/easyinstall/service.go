package easyinstall

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/renameio/v2"
)

// Platform is the service manager the host boots services with.
type Platform int

const (
	PlatformUnsupported Platform = iota
	PlatformDarwin
	PlatformSolaris
	PlatformBSD
	PlatformSysVInit
)

func (p Platform) String() string {
	switch p {
	case PlatformDarwin:
		return "launchd"
	case PlatformSolaris:
		return "smf"
	case PlatformBSD:
		return "bsd-rc.d"
	case PlatformSysVInit:
		return "sysv-init.d"
	default:
		return "unsupported"
	}
}

// DetectPlatform maps the OS name (runtime.GOOS) to a Platform. First match
// wins; SysV init is only chosen when initdDir exists.
func DetectPlatform(goos, initdDir string) Platform {
	switch {
	case goos == "darwin":
		return PlatformDarwin
	case goos == "solaris" || goos == "illumos":
		return PlatformSolaris
	case strings.Contains(goos, "bsd") || goos == "dragonfly":
		return PlatformBSD
	}
	if info, err := os.Stat(initdDir); err == nil && info.IsDir() {
		return PlatformSysVInit
	}
	return PlatformUnsupported
}

// HostPlatform detects the platform of the running system.
func HostPlatform(paths ServicePaths) Platform {
	return DetectPlatform(runtime.GOOS, paths.InitdDir)
}

// ServicePaths are the fixed system locations touched during registration.
type ServicePaths struct {
	SMFManifest    string   // SMF manifest destination
	RepositoryDoor string   // SMF liveness probe
	RCDScript      string   // BSD rc.d script
	InitdDir       string   // SysV init.d directory
	InitdLink      string   // registered SysV service name
	RunlevelDirs   []string // candidate rc<N>.d layouts, %s is the runlevel
}

// DefaultServicePaths returns the production locations.
func DefaultServicePaths() ServicePaths {
	return ServicePaths{
		SMFManifest:    "/var/svc/manifest/network/http-cherokee.xml",
		RepositoryDoor: "/etc/svc/volatile/repository_door",
		RCDScript:      "/etc/rc.d/cherokee",
		InitdDir:       "/etc/init.d",
		InitdLink:      "/etc/init.d/cherokee-opt",
		RunlevelDirs:   []string{"/etc/rc%s.d", "/etc/init.d/rc%s.d"},
	}
}

// Registrar installs and activates the boot-time service for one platform.
type Registrar interface {
	Platform() Platform
	Register() error
}

// RegistrarEnv is what every registration protocol needs.
type RegistrarEnv struct {
	Config InstallConfig
	Exec   *Executor
	Root   *RootSession
	Prompt Prompter
	Paths  ServicePaths
}

// NewRegistrar selects the registration protocol for platform.
func NewRegistrar(platform Platform, env RegistrarEnv) Registrar {
	switch platform {
	case PlatformDarwin:
		return &launchdRegistrar{env}
	case PlatformSolaris:
		return &smfRegistrar{env}
	case PlatformBSD:
		return &bsdRegistrar{env}
	case PlatformSysVInit:
		return &sysvRegistrar{env}
	default:
		return unsupportedRegistrar{}
	}
}

// consent asks before any system state is touched.
func (e RegistrarEnv) consent() bool {
	fmt.Println()
	if e.Prompt.Confirm("Do you want Cherokee to be started at boot time?", true) {
		return true
	}
	cPrintln(colInfo, "Skipping boot-time registration.")
	return false
}

// renderTemp renders tmpl into the build directory and returns the file path.
func (e RegistrarEnv) renderTemp(tmpl *ServiceTemplate, name string) (string, error) {
	txt, err := tmpl.Render(NewTemplateData(e.Config.Prefix))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Config.BuildDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", e.Config.BuildDir, err)
	}
	path := filepath.Join(e.Config.BuildDir, name)
	if err := renameio.WriteFile(path, []byte(txt), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// sudo runs each command as root. Failures are reported by the executor and
// do not stop the remaining commands.
func (e RegistrarEnv) sudo(commands ...string) error {
	for _, c := range commands {
		if _, err := e.Root.ExecuteAsRoot(c); err != nil {
			return err
		}
	}
	return nil
}

type unsupportedRegistrar struct{}

func (unsupportedRegistrar) Platform() Platform { return PlatformUnsupported }

func (unsupportedRegistrar) Register() error {
	debugf("No supported service manager found, skipping registration\n")
	return nil
}
