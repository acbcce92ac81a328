// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package layout realises a declarative set of directories under a root.
//
// Materializing is idempotent: directories that already exist are left alone,
// together with everything inside them, so a layout can be applied to a fresh
// target or on top of an earlier run.
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// KeepFile is the marker written into leaf directories when markers are enabled
const KeepFile = ".gitkeep"

// Manifest is an ordered set of relative directory paths using forward slashes
type Manifest []string

// NewManifest cleans and de-duplicates paths preserving first occurrence order
func NewManifest(paths ...string) (Manifest, error) {
	seen := map[string]struct{}{}
	res := Manifest{}

	for _, p := range paths {
		clean, err := cleanRel(p)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		res = append(res, clean)
	}

	return res, nil
}

// Under returns a new manifest with every path placed below prefix
func (m Manifest) Under(prefix string) Manifest {
	res := make(Manifest, 0, len(m))
	for _, p := range m {
		res = append(res, path.Join(prefix, p))
	}
	return res
}

// Merge appends the paths of other that are not already present
func (m Manifest) Merge(other Manifest) Manifest {
	res, _ := NewManifest(append(append([]string{}, m...), other...)...)
	return res
}

// Leaves returns paths that are not a parent of another path in the manifest
func (m Manifest) Leaves() []string {
	var res []string
	for _, p := range m {
		leaf := true
		for _, o := range m {
			if o != p && strings.HasPrefix(o, p+"/") {
				leaf = false
				break
			}
		}
		if leaf {
			res = append(res, p)
		}
	}
	return res
}

// Options adjusts how a manifest is materialized
type Options struct {
	// KeepFiles writes an empty marker into every leaf directory lacking one
	KeepFiles bool
	// DirMode is used for new directories, 0755 when unset
	DirMode fs.FileMode
}

// Result describes what a Materialize call did
type Result struct {
	Created []string
	Existed []string
	Markers []string
}

// Materialize ensures every directory of m exists below root
func Materialize(root string, m Manifest, opts Options) (*Result, error) {
	mode := opts.DirMode
	if mode == 0 {
		mode = 0755
	}

	res := &Result{}

	for _, rel := range m {
		dir := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Stat(dir)
		switch {
		case err == nil && !info.IsDir():
			return res, fmt.Errorf("%s exists and is not a directory", dir)
		case err == nil:
			res.Existed = append(res.Existed, rel)
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return res, fmt.Errorf("stat %s: %w", dir, err)
		}

		err = os.MkdirAll(dir, mode)
		if err != nil {
			return res, fmt.Errorf("creating %s: %w", dir, err)
		}
		res.Created = append(res.Created, rel)
	}

	if opts.KeepFiles {
		for _, rel := range m.Leaves() {
			created, err := writeMarker(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return res, err
			}
			if created {
				res.Markers = append(res.Markers, path.Join(rel, KeepFile))
			}
		}
	}

	return res, nil
}

// Directories lists every directory below root as sorted slash separated paths
func Directories(root string) ([]string, error) {
	var res []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		res = append(res, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(res)

	return res, nil
}

func writeMarker(dir string) (bool, error) {
	f, err := os.OpenFile(filepath.Join(dir, KeepFile), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("writing marker in %s: %w", dir, err)
	}

	return true, f.Close()
}

func cleanRel(p string) (string, error) {
	trimmed := strings.TrimSpace(filepath.ToSlash(p))
	if trimmed == "" {
		return "", fmt.Errorf("empty directory path")
	}
	if path.IsAbs(trimmed) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", fmt.Errorf("directory %q must be relative", p)
	}

	clean := path.Clean(trimmed)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("directory %q escapes the target root", p)
	}

	return clean, nil
}
