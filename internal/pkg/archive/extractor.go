package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
)

// Limits bounds what a single archive may expand to. Zero values disable a check.
type Limits struct {
	MaxUncompressedBytes int64
	MaxEntries           int
}

// Extract unpacks a zip held in data into dir, which must already exist.
func Extract(data []byte, dir string, limits Limits) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrInsecurePath) {
			return fmt.Errorf("%w: %v", entity.ErrUnsafePath, err)
		}
		return fmt.Errorf("%w: %v", entity.ErrInvalidArchive, err)
	}

	if limits.MaxEntries > 0 && len(zr.File) > limits.MaxEntries {
		return fmt.Errorf("%w: %d entries, limit %d", entity.ErrArchiveTooLarge, len(zr.File), limits.MaxEntries)
	}

	var remaining int64 = -1
	if limits.MaxUncompressedBytes > 0 {
		remaining = limits.MaxUncompressedBytes
	}

	// target -> entry is a directory; repeated directory entries are harmless
	seen := make(map[string]bool, len(zr.File))

	for _, f := range zr.File {
		target, err := safeTarget(dir, f.Name)
		if err != nil {
			return err
		}
		if target == dir {
			continue
		}

		isDir := f.FileInfo().IsDir()
		if wasDir, ok := seen[target]; ok && !(wasDir && isDir) {
			return fmt.Errorf("%w: duplicate entry %q", entity.ErrInvalidArchive, f.Name)
		}
		seen[target] = isDir

		mode := f.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			return fmt.Errorf("%w: symlink entry %q", entity.ErrUnsafePath, f.Name)
		case isDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %q: %w", f.Name, err)
			}
		default:
			n, err := extractFile(f, target, remaining)
			if err != nil {
				return err
			}
			if remaining >= 0 {
				remaining -= n
			}
		}

		if !f.Modified.IsZero() {
			_ = os.Chtimes(target, f.Modified, f.Modified)
		}
	}

	return nil
}

// safeTarget maps an entry name to a path inside dir or rejects it.
func safeTarget(dir, name string) (string, error) {
	clean := strings.TrimSuffix(strings.ReplaceAll(name, `\`, "/"), "/")
	if clean == "" {
		return dir, nil
	}

	local := filepath.FromSlash(clean)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", entity.ErrUnsafePath, name)
	}

	target := filepath.Join(dir, local)
	if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", entity.ErrUnsafePath, name)
	}
	return target, nil
}

// extractFile writes one entry and returns the number of bytes written.
// remaining < 0 means unlimited.
func extractFile(f *zip.File, target string, remaining int64) (int64, error) {
	if remaining >= 0 && f.UncompressedSize64 > uint64(remaining) {
		return 0, fmt.Errorf("%w: entry %q", entity.ErrArchiveTooLarge, f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("create directory for %q: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: open %q: %v", entity.ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create %q: %w", f.Name, err)
	}
	defer out.Close()

	var src io.Reader = rc
	if remaining >= 0 {
		// the header size can lie, so bound the actual stream as well
		src = io.LimitReader(rc, remaining+1)
	}

	n, err := io.Copy(out, src)
	if err != nil {
		return n, fmt.Errorf("%w: read %q: %v", entity.ErrInvalidArchive, f.Name, err)
	}
	if remaining >= 0 && n > remaining {
		return n, fmt.Errorf("%w: entry %q", entity.ErrArchiveTooLarge, f.Name)
	}
	return n, out.Close()
}
