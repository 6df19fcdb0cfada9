package easyinstall

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Reporter prints what was installed and how to start it.
type Reporter struct {
	Exec   *Executor
	Config InstallConfig
	Out    io.Writer // defaults to os.Stdout
}

func (r *Reporter) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// Report runs "cherokee -i" and prints the how-to lines. The server's exit
// status is shown but never fails the report.
func (r *Reporter) Report() error {
	w := r.out()
	prefix := r.Config.Prefix
	daemon := NewTemplateData(prefix).Daemon

	fprintStyled(w, colMkdir, "Technical details:")
	if _, err := r.Exec.Execute(shellQuote(daemon) + " -i"); err != nil {
		return err
	}

	archive := r.Config.ArchivePath()
	if _, err := os.Stat(archive); err == nil {
		sum, err := fileFingerprint(archive)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, " - Archive %s (blake3 %s)\n", filepath.Base(archive), sum)
	}

	fprintStyled(w, colMkdir, "How to:")
	fmt.Fprintf(w, " - Launch manually the server:      %s -d\n", daemon)
	fmt.Fprintf(w, " - Launch the administration GUI:   %s\n", filepath.Join(prefix, "bin", "cherokee-admin-launcher"))
	return nil
}
