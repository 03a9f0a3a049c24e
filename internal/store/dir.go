package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a FileSet over one local directory, non-recursive.
type Dir struct {
	path string
}

// NewDir creates a FileSet for a local directory
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory path
func (d *Dir) Path() string {
	return d.path
}

// List returns the names of the regular files in the directory, sorted.
// Hidden files are skipped.
func (d *Dir) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", d.path, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Open opens the named file for reading
func (d *Dir) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.path, name))
}

// Create opens the named file for writing. Data goes through a temp file in
// the same directory that is renamed into place on Close, so a partially
// written file never appears under its final name. The directory is created
// when missing.
func (d *Dir) Create(_ context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", d.path, err)
	}

	tmp, err := os.CreateTemp(d.path, "."+name+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &tempFile{file: tmp, final: filepath.Join(d.path, name)}, nil
}

// tempFile renames itself to its final name on Close. A failed write
// poisons the commit, so the temp file is removed instead of renamed.
type tempFile struct {
	file     *os.File
	final    string
	writeErr error
}

func (t *tempFile) Write(p []byte) (int, error) {
	n, err := t.file.Write(p)
	if err != nil && t.writeErr == nil {
		t.writeErr = err
	}
	return n, err
}

func (t *tempFile) Close() error {
	closeErr := t.file.Close()
	if t.writeErr != nil || closeErr != nil {
		os.Remove(t.file.Name())
		if t.writeErr != nil {
			return t.writeErr
		}
		return closeErr
	}
	if err := os.Rename(t.file.Name(), t.final); err != nil {
		os.Remove(t.file.Name())
		return err
	}
	return nil
}
