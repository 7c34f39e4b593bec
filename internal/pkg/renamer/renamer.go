// Package renamer renumbers the images of every directory of a tree to 1..N.
//
// Ranks are assigned per directory from a byte-order sort of the original
// names, so "img10.jpg" ranks before "img2.jpg". Each file keeps its own
// extension, casing included. Files move in two phases (all images to unique
// staging names, then staging names to final names) so a final name can never
// clobber an original that has not been processed yet.
package renamer

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ds124wfegd/zip-renamer/internal/entity"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/archive"
	"github.com/google/uuid"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
}

const stagePrefix = ".renaming-"

// IsImage reports whether name is an image by its lowercase extension.
// Archiver artifacts are never images.
func IsImage(name string) bool {
	if archive.IsArtifact(name) {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// RenameTree renames images in root and in every directory below it,
// skipping artifact directories. Mappings carry Dir relative to root.
func RenameTree(root string) ([]entity.RenameMapping, error) {
	var all []entity.RenameMapping

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && archive.IsArtifact(d.Name()) {
			return filepath.SkipDir
		}

		mappings, err := RenameDir(path)
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		for i := range mappings {
			mappings[i].Dir = filepath.ToSlash(rel)
		}
		all = append(all, mappings...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// RenameDir renames the images directly inside dir. Subdirectories and
// non-image files are left alone. A directory without images is a no-op.
func RenameDir(dir string) ([]entity.RenameMapping, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	slices.Sort(names)

	token := uuid.New().String()
	staged := make([]string, len(names))
	for i, name := range names {
		staged[i] = stagePrefix + token + "-" + strconv.Itoa(i+1)
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, staged[i])); err != nil {
			return nil, fmt.Errorf("stage %q: %w", name, err)
		}
	}

	mappings := make([]entity.RenameMapping, 0, len(names))
	for i, name := range names {
		rank := i + 1
		final := strconv.Itoa(rank) + filepath.Ext(name)
		target := filepath.Join(dir, final)

		if _, err := os.Lstat(target); err == nil {
			return nil, fmt.Errorf("%w: %q for %q", entity.ErrRenameCollision, final, name)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("check %q: %w", final, err)
		}

		if err := os.Rename(filepath.Join(dir, staged[i]), target); err != nil {
			return nil, fmt.Errorf("rename %q to %q: %w", name, final, err)
		}
		mappings = append(mappings, entity.RenameMapping{From: name, To: final, Rank: rank})
	}

	return mappings, nil
}
