package easyinstall

import "fmt"

// Prerequisites checks for the toolchain before the pipeline starts.
type Prerequisites struct {
	Exec     *Executor
	Root     *RootSession
	LookPath LookPathFunc
	Prompt   Prompter
	Platform Platform
}

// Check returns ErrMissingToolchain when the build cannot possibly succeed.
func (p *Prerequisites) Check() error {
	// Check for a C compiler
	if p.LookPath.firstFound("gcc", "cc") == "" {
		if p.Platform != PlatformSolaris {
			return fmt.Errorf("%w: a C compiler is required", ErrMissingToolchain)
		}
		if !p.Prompt.Confirm("SUNWgcc must be installed. Proceed?", true) {
			return fmt.Errorf("%w: SUNWgcc installation declined", ErrMissingToolchain)
		}
		if err := p.Root.mustRoot("pkg install SUNWgcc"); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingToolchain, err)
		}
	}

	if !p.LookPath.has("env") {
		return fmt.Errorf("%w: 'env' is required", ErrMissingToolchain)
	}
	// cherokee-admin is written in Python
	res, err := p.Exec.Execute("env python -V")
	if err != nil || res.ExitCode != 0 {
		return fmt.Errorf("%w: Python is not in the path", ErrMissingToolchain)
	}

	if makeTool(p.LookPath) == "" {
		return fmt.Errorf("%w: 'make' or 'gmake' is required for the compilation", ErrMissingToolchain)
	}
	return nil
}
