package easyinstall

import (
	"sync/atomic"

	"github.com/gookit/color"
)

// We use a value of 1 while a phase is mutating the system and 0 otherwise.
var isCriticalAtomic atomic.Int32

var (
	// Debug enables debugf output. Set once by Main.
	Debug bool

	ConfigFile    = "/etc/easyinstall.conf"
	version       = "dev" // overridden at build time
	buildDate     = "unknown"
	productName   = "cherokee"
	archiveName   = "cherokee-latest.tar.gz"
	defaultPrefix = "/opt/cherokee"
	develPrefix   = "/opt/cherokee-dev"
	defaultBuild  = "/var/tmp/cherokee-build"
	releaseURL    = "http://www.cherokee-project.com/cherokee-latest-tarball"
	snapshotURL   = "http://www.cherokee-project.com/download/trunk/cherokee-latest-svn.tar.gz"
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
	colCommand = color.New(color.FgYellow, color.OpBold)
	colRemove  = color.Red
	colMkdir   = color.Blue
)
