// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a source has no file with the requested name.
	ErrNotFound = errors.New("asset: not found")

	// ErrFormat is returned when a file is not in the expected format.
	ErrFormat = errors.New("asset: invalid format")
)

// Source opens named asset files.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// DirSource reads assets from a directory on the OS filesystem.
type DirSource struct {
	root string
}

// Dir returns a source rooted at root.
func Dir(root string) *DirSource {
	return &DirSource{root: root}
}

// Root returns the directory the source reads from.
func (d *DirSource) Root() string { return d.root }

// Open opens name relative to the root. Names escaping the root are rejected.
func (d *DirSource) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, err
	}
	return f, nil
}

type fsSource struct {
	fsys fs.FS
}

// FS returns a source backed by fsys.
func FS(fsys fs.FS) Source {
	return fsSource{fsys: fsys}
}

func (s fsSource) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, err
	}
	return f, nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func cleanName(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", notFound(name)
	}
	return clean, nil
}

// ReadFile reads the whole file name from src.
func ReadFile(src Source, name string) ([]byte, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
