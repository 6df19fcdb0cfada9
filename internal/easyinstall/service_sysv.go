package easyinstall

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Web servers whose start priority ours should precede.
var competingServices = []string{"apache", "apache2", "httpd", "lighttpd", "nginx"}

const defaultRunlevelPriority = 99

var (
	startLinkPattern = regexp.MustCompile(`^s(\d+)(.+)$`)
	runlevelPattern  = regexp.MustCompile(`\d+`)
)

// RunlevelSlot is where the start and kill links go in a runlevel directory.
type RunlevelSlot struct {
	Priority  int
	StartLink string
	StopLink  string
}

// applicationLevel returns the start priority of app in dir, or
// defaultRunlevelPriority if it has no start link there. Names are compared
// case-insensitively.
func applicationLevel(dir, app string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		m := startLinkPattern.FindStringSubmatch(strings.ToLower(e.Name()))
		if m == nil || m[2] != app {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, nil
	}
	return defaultRunlevelPriority, nil
}

// ComputeRunlevelSlot picks a priority one below the lowest competing web
// server found in dir and builds the link paths for service.
func ComputeRunlevelSlot(dir, service string) (RunlevelSlot, error) {
	level := defaultRunlevelPriority
	for _, app := range competingServices {
		n, err := applicationLevel(dir, app)
		if err != nil {
			return RunlevelSlot{}, fmt.Errorf("scanning %s: %w", dir, err)
		}
		level = min(level, n)
	}
	prio := max(level-1, 0)
	return RunlevelSlot{
		Priority:  prio,
		StartLink: filepath.Join(dir, fmt.Sprintf("S%02d%s", prio, service)),
		StopLink:  filepath.Join(dir, fmt.Sprintf("K%02d%s", prio, service)),
	}, nil
}

// parseRunlevel extracts the current runlevel from the output of runlevel(8).
func parseRunlevel(out string) (string, bool) {
	m := runlevelPattern.FindString(out)
	return m, m != ""
}

// runlevelDir returns the first candidate layout that exists for level.
func runlevelDir(candidates []string, level string) (string, error) {
	for _, c := range candidates {
		d := fmt.Sprintf(c, level)
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: no rc%s.d directory", ErrUnknownInitLayout, level)
}

type sysvRegistrar struct{ RegistrarEnv }

func (r *sysvRegistrar) Platform() Platform { return PlatformSysVInit }

// Register installs the init script into the prefix and links it from
// init.d and the current runlevel directory.
func (r *sysvRegistrar) Register() error {
	if !r.consent() {
		return nil
	}

	res, err := r.Exec.Execute("runlevel")
	if err != nil {
		return err
	}
	level, ok := parseRunlevel(res.Output)
	if !ok {
		cPrintln(colError, "Could not figure the current runlevel. Skipping step.")
		return nil
	}

	rcDir, err := runlevelDir(r.Paths.RunlevelDirs, level)
	if err != nil {
		return err
	}

	initd := r.Paths.InitdLink
	slot, err := ComputeRunlevelSlot(rcDir, filepath.Base(initd))
	if err != nil {
		return err
	}
	debugf("Runlevel %s, directory %s, priority %02d\n", level, rcDir, slot.Priority)

	tmp := filepath.Join(r.Config.BuildDir, productName+".initd")
	script := filepath.Join(r.Config.Prefix, productName+".initd")

	// Preliminary clean up
	stale := []string{tmp, script, initd, slot.StartLink, slot.StopLink}
	quoted := make([]string, len(stale))
	for i, p := range stale {
		quoted[i] = shellQuote(p)
	}
	if err := r.sudo("rm -f " + strings.Join(quoted, " ")); err != nil {
		return err
	}

	if _, err := r.renderTemp(sysvTemplate, filepath.Base(tmp)); err != nil {
		return err
	}

	return r.sudo(
		"cp "+shellQuote(tmp)+" "+shellQuote(script),
		"chown root "+shellQuote(script),
		"chmod 755 "+shellQuote(script),
		"ln -s "+shellQuote(script)+" "+shellQuote(initd),
		"ln -s "+shellQuote(initd)+" "+shellQuote(slot.StartLink),
		"ln -s "+shellQuote(initd)+" "+shellQuote(slot.StopLink),
	)
}
