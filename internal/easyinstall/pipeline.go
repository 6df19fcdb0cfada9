package easyinstall

import (
	"context"
	"fmt"
)

// Stages are the operations the pipeline sequences. Installer is the
// production implementation.
type Stages interface {
	Download(ctx context.Context) (archive string, err error)
	LocateArchive() (string, error)
	Unpack(ctx context.Context, archive string) (srcDir string, err error)
	LocateSource() (string, error)
	Compile(ctx context.Context, srcDir string) error
	Install(ctx context.Context, srcDir string) error
	RegisterService(ctx context.Context) error
	Report(ctx context.Context) error
}

// PhaseObserver receives lifecycle callbacks for each phase that runs.
type PhaseObserver interface {
	PhaseStarted(p Phase)
	PhaseCompleted(p Phase, err error)
}

// consoleObserver prints "-> phase" progress lines.
type consoleObserver struct{}

func (consoleObserver) PhaseStarted(p Phase) {
	fmt.Println()
	arrow("Phase: %s", p)
}

func (consoleObserver) PhaseCompleted(p Phase, err error) {
	if err != nil {
		cPrintf(colError, "Phase %s failed: %v\n", p, err)
		return
	}
	debugf("Phase %s done\n", p)
}

// Pipeline runs the phases from StartPhase to PhaseReport, strictly in order.
type Pipeline struct {
	StartPhase Phase
	Stages     Stages
	Observer   PhaseObserver // defaults to console output
}

// Run executes every phase with ordinal >= StartPhase and stops at the first
// failure without rolling anything back. The returned error is a *PhaseError.
//
// Artifacts that a skipped phase would have produced are located on disk
// instead; when they are absent the error wraps ErrPrerequisiteMissing and no
// phase runs.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.StartPhase
	if !start.Valid() {
		start = PhaseDownload
	}
	obs := p.Observer
	if obs == nil {
		obs = consoleObserver{}
	}

	var archive, srcDir string
	var err error
	switch {
	case start == PhaseUnpack:
		if archive, err = p.Stages.LocateArchive(); err != nil {
			return &PhaseError{Phase: start, Err: fmt.Errorf("%w: %v", ErrPrerequisiteMissing, err)}
		}
	case start > PhaseUnpack:
		if srcDir, err = p.Stages.LocateSource(); err != nil {
			return &PhaseError{Phase: start, Err: fmt.Errorf("%w: %v", ErrPrerequisiteMissing, err)}
		}
	}
	debugf("Starting at phase %s (archive=%q, source=%q)\n", start, archive, srcDir)

	defer isCriticalAtomic.Store(0)
	for _, phase := range AllPhases {
		if phase < start {
			continue
		}
		if err := ctx.Err(); err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}

		if phase.critical() {
			isCriticalAtomic.Store(1)
		} else {
			isCriticalAtomic.Store(0)
		}

		obs.PhaseStarted(phase)
		switch phase {
		case PhaseDownload:
			archive, err = p.Stages.Download(ctx)
		case PhaseUnpack:
			srcDir, err = p.Stages.Unpack(ctx, archive)
		case PhaseCompile:
			err = p.Stages.Compile(ctx, srcDir)
		case PhaseInstall:
			err = p.Stages.Install(ctx, srcDir)
		case PhaseRegisterService:
			err = p.Stages.RegisterService(ctx)
		case PhaseReport:
			err = p.Stages.Report(ctx)
		}
		obs.PhaseCompleted(phase, err)
		if err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}
	}
	return nil
}
