package easyinstall

import "fmt"

// Phase is one ordered step of the installation pipeline.
type Phase int

const (
	PhaseDownload Phase = iota + 1
	PhaseUnpack
	PhaseCompile
	PhaseInstall
	PhaseRegisterService
	PhaseReport
)

// AllPhases lists the phases in execution order.
var AllPhases = []Phase{
	PhaseDownload,
	PhaseUnpack,
	PhaseCompile,
	PhaseInstall,
	PhaseRegisterService,
	PhaseReport,
}

var phaseNames = map[Phase]string{
	PhaseDownload:        "download",
	PhaseUnpack:          "unpack",
	PhaseCompile:         "compile",
	PhaseInstall:         "install",
	PhaseRegisterService: "initd",
	PhaseReport:          "report",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Valid reports whether p is one of the six pipeline phases.
func (p Phase) Valid() bool {
	return p >= PhaseDownload && p <= PhaseReport
}

// critical phases mutate the system outside the build directory.
func (p Phase) critical() bool {
	return p == PhaseInstall || p == PhaseRegisterService
}
