package easyinstall

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// compression identifies the decompressor an archive needs.
type compression int

const (
	compGzip compression = iota
	compXZ
	compBzip2
	compZstd
	compNone
	compZip
)

// detectCompression picks the decompressor from the file name. Anything
// unrecognised is treated as gzip, which is what release tarballs use.
func detectCompression(path string) compression {
	switch {
	case strings.HasSuffix(path, ".tar.xz"), strings.HasSuffix(path, ".txz"):
		return compXZ
	case strings.HasSuffix(path, ".tar.bz2"), strings.HasSuffix(path, ".tbz2"):
		return compBzip2
	case strings.HasSuffix(path, ".tar.zst"):
		return compZstd
	case strings.HasSuffix(path, ".tar"):
		return compNone
	case strings.HasSuffix(path, ".zip"):
		return compZip
	default:
		return compGzip
	}
}

// decompressTool is the external program streaming the archive to tar, or "" for none.
func (c compression) decompressTool() string {
	switch c {
	case compXZ:
		return "xz"
	case compBzip2:
		return "bzip2"
	case compZstd:
		return "zstd"
	case compNone, compZip:
		return ""
	default:
		return "gzip"
	}
}

// safeJoin joins name under dest, rejecting entries that escape it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}

// extractNative unpacks archive into dest without external tools.
func extractNative(archive, dest string) error {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	comp := detectCompression(archive)
	if comp == compZip {
		return extractZip(archive, dest)
	}

	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archive, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch comp {
	case compGzip:
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader for %s: %w", archive, err)
		}
		defer gz.Close()
		r = gz
	case compBzip2:
		r = bzip2.NewReader(f)
	case compXZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create xz reader for %s: %w", archive, err)
		}
		r = xzr
	case compZstd:
		zst, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader for %s: %w", archive, err)
		}
		defer zst.Close()
		r = zst
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar header in %s: %w", archive, err)
		}

		// Skip PAX headers (global or per-file)
		if hdr.Typeflag == tar.TypeXHeader || hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create parent dir for %s: %w", target, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0o700); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", target, err)
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to write file %s: %w", target, err)
			}
			outFile.Close()
			// Keep archive timestamps; skew is repaired afterwards.
			if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
				return fmt.Errorf("failed to set times for file %s: %w", target, err)
			}
		case tar.TypeSymlink:
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", target, hdr.Linkname, err)
			}
		default:
			debugf("Skipping unsupported tar entry type %c: %s\n", hdr.Typeflag, hdr.Name)
		}
	}
	return nil
}

// extractZip unpacks a zip archive into dest.
func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			err = os.MkdirAll(target, 0o755)
		} else {
			err = writeZipEntry(f, target)
		}
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
