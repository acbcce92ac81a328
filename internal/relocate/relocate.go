// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package relocate moves generated files to the locations the project layout
// expects them in.
package relocate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/renameio/v2"
)

// rename is swapped in tests to simulate cross device moves
var rename = os.Rename

// Move renames src to dst creating the parent of dst. When renaming is not
// possible across the filesystems involved the file is copied and the source
// removed. A missing src is not an error, moved is false in that case.
func Move(src string, dst string) (moved bool, err error) {
	info, err := os.Stat(src)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	case info.IsDir():
		return false, fmt.Errorf("%s is a directory", src)
	}

	err = os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return false, err
	}

	err = rename(src, dst)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return false, err
	}

	err = copyFile(src, dst, info.Mode().Perm())
	if err != nil {
		return false, err
	}

	return true, os.Remove(src)
}

// RewriteImport replaces from with to in the file at path. Missing files and
// files without from are left untouched, changed reports whether the file was
// rewritten.
func RewriteImport(path string, from string, to string) (changed bool, err error) {
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}

	if !strings.Contains(string(content), from) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	updated := strings.ReplaceAll(string(content), from, to)

	return true, renameio.WriteFile(path, []byte(updated), info.Mode().Perm())
}

func copyFile(src string, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
