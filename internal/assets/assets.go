// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package assets copies bundled static trees, like CI workflow definitions,
// into a project verbatim.
package assets

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Copy recursively copies every file of src into dst preserving the relative
// structure. Files already present in dst are overwritten. The slash
// separated paths of copied files are returned in walk order.
func Copy(src fs.FS, dst string) ([]string, error) {
	var copied []string

	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		out := filepath.Join(dst, filepath.FromSlash(path))

		switch {
		case d.IsDir():
			return os.MkdirAll(out, 0755)

		case d.Type().IsRegular():
			err = copyFile(src, path, out)
			if err != nil {
				return err
			}
			copied = append(copied, path)

			return nil

		default:
			return fmt.Errorf("invalid file in assets: %v", path)
		}
	})
	if err != nil {
		return copied, err
	}

	return copied, nil
}

func copyFile(src fs.FS, name string, out string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	_, err = io.Copy(f, in)
	if err != nil {
		f.Close()
		return fmt.Errorf("copying %s: %w", name, err)
	}

	return f.Close()
}
