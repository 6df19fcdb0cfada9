package easyinstall

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// sourceDirPattern matches "<name>-MAJOR.MINOR.PATCH" directory names.
func sourceDirPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `-\d+\.\d+\.\d+`)
}

// FindUnpackedSource returns the first directory in buildDir (in name order)
// whose name is a version-tagged release of name.
func FindUnpackedSource(buildDir, name string) (string, error) {
	entries, err := os.ReadDir(buildDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	re := sourceDirPattern(name)
	for _, e := range entries {
		if !re.MatchString(e.Name()) {
			continue
		}
		path := filepath.Join(buildDir, e.Name())
		// Stat follows symlinks, so a link to a source tree counts.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrSourceNotFound, buildDir)
}

// RepairClockSkew resets every timestamp under root to now when at least one
// entry is dated in the future, which happens when the archive was built on a
// machine whose clock ran ahead. It reports whether a repair pass ran.
func RepairClockSkew(root string, now time.Time) (bool, error) {
	skewed := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(now) {
			skewed = true
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("scanning %s for future timestamps: %w", root, err)
	}
	if !skewed {
		return false, nil
	}

	debugf("Future-dated files found under %s, touching the tree\n", root)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		return os.Chtimes(path, now, now)
	})
	if err != nil {
		return true, fmt.Errorf("resetting timestamps under %s: %w", root, err)
	}
	return true, nil
}

// Unpacker extracts the downloaded archive into the build directory.
type Unpacker struct {
	Exec     *Executor
	LookPath LookPathFunc
	Name     string           // product name used to find the source directory
	Now      func() time.Time // defaults to time.Now
}

// Unpack extracts archive into buildDir and returns the unpacked source directory.
func (u *Unpacker) Unpack(archive, buildDir string) (string, error) {
	comp := detectCompression(archive)
	tool := comp.decompressTool()

	switch {
	case comp == compZip:
		if err := extractNative(archive, buildDir); err != nil {
			return "", err
		}
	case u.LookPath.has("tar") && (tool == "" || u.LookPath.has(tool)):
		cmd := "tar xfv " + shellQuote(archive)
		if tool != "" {
			cmd = fmt.Sprintf("%s -dc %s | tar xfv -", tool, shellQuote(archive))
		}
		res, err := u.Exec.Execute(cmd, WithDir(buildDir))
		if err != nil {
			return "", err
		}
		if err := checkExit(cmd, res); err != nil {
			return "", err
		}
	default:
		debugf("tar or %s not found, extracting in-process\n", tool)
		arrow("Extracting %s", filepath.Base(archive))
		if err := extractNative(archive, buildDir); err != nil {
			return "", err
		}
	}

	path, err := FindUnpackedSource(buildDir, u.Name)
	if err != nil {
		return "", err
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	repaired, err := RepairClockSkew(path, now())
	if err != nil {
		return "", err
	}
	if repaired {
		arrow("Reset future-dated timestamps under %s", path)
	}
	return path, nil
}
