// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package templates holds the bundled template and asset trees.
//
// project is rendered into a new project root, feature into every feature
// directory and the workflows subtree matching the package manager is copied
// verbatim when CI workflows are wanted.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed all:project all:feature all:workflows
var files embed.FS

// Project is the template tree rendered into the project root
func Project() fs.FS {
	return sub("project")
}

// Feature is the template tree rendered into a feature directory
func Feature() fs.FS {
	return sub("feature")
}

// Workflows holds one static CI workflow tree per package manager, keyed by
// its top level directory name
func Workflows() fs.FS {
	return sub("workflows")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// only fails for invalid names
		panic(err)
	}

	return f
}
