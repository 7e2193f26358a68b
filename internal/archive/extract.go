// Package archive handles the compressed vector bundles users submit:
// extraction into a per-upload scratch directory and discovery of the
// shapefile payload inside.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoShapefile is returned when an extracted archive contains no .shp
// payload at any depth.
var ErrNoShapefile = errors.New("archive contains no shapefile")

// Extract unpacks the zip archive at src into dest, creating dest if needed.
// Entry paths are validated against traversal outside dest before any write.
func Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", filepath.Base(src), err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create extraction dir: %w", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

// extractEntry writes a single archive entry under dest.
func extractEntry(f *zip.File, dest string) error {
	target := filepath.Join(dest, filepath.Clean(f.Name))

	// Reject entries that would escape the extraction directory.
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction dir", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// FindShapefile locates the shapefile payload under dir.
//
// When the archive carries more than one candidate, the lexicographically
// smallest path wins so that repeated runs over the same archive always pick
// the same payload. Returns ErrNoShapefile when none exist.
func FindShapefile(dir string) (string, error) {
	var candidates []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".shp") {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan extraction dir: %w", err)
	}

	if len(candidates) == 0 {
		return "", ErrNoShapefile
	}
	sort.Strings(candidates)
	return candidates[0], nil
}
