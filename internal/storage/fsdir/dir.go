package fsdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a handle to an existing directory.
type Dir struct {
	path string
}

// Path returns the directory's absolute path.
func (d Dir) Path() string { return d.path }

// Join returns the path of name inside the directory.
func (d Dir) Join(name string) string { return filepath.Join(d.path, name) }

// Ensure joins the given path segments and creates the directory
// (recursively) if it does not exist. Idempotent.
func Ensure(segments ...string) (Dir, error) {
	if len(segments) == 0 {
		return Dir{}, errors.New("fsdir: no path segments")
	}
	path := filepath.Join(segments...)
	abs, err := filepath.Abs(path)
	if err != nil {
		return Dir{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return Dir{}, fmt.Errorf("create %s: %w", abs, err)
	}
	return Dir{path: abs}, nil
}

// FileCount returns the number of regular files directly in the
// directory.
func (d Dir) FileCount() (int, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", d.path, err)
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n, nil
}

// FirstFile returns the path of the lexicographically first regular
// file in the directory, or "" when the directory holds none.
func (d Dir) FirstFile() (string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", d.path, err)
	}
	// os.ReadDir sorts entries by filename.
	for _, e := range entries {
		if e.Type().IsRegular() {
			return filepath.Join(d.path, e.Name()), nil
		}
	}
	return "", nil
}

// AllFiles returns the paths of all regular files directly in the
// directory, sorted by filename. The listing is a snapshot.
func (d Dir) AllFiles() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(d.path, e.Name()))
		}
	}
	return files, nil
}

// MoveFile renames src into the directory. When newName is empty the
// source's base name is kept. The rename is atomic on a single
// filesystem; the new path is returned.
func (d Dir) MoveFile(src, newName string) (string, error) {
	if newName == "" {
		newName = filepath.Base(src)
	}
	dest := filepath.Join(d.path, newName)
	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", src, dest, err)
	}
	return dest, nil
}
