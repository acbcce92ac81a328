// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package nodeenv verifies the host has a usable Node.js runtime and package
// manager before any project is generated.
package nodeenv

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/runner"
)

// DefaultMinMajor is the oldest Node.js major release supported by default
const DefaultMinMajor = 18

// Requirements describes the runtime a project needs
type Requirements struct {
	MinMajor       int
	PackageManager string
}

// Report describes the detected runtime
type Report struct {
	Node                  *semver.Version
	PackageManager        string
	PackageManagerVersion string
}

// Check runs node and the package manager to discover their versions, an
// errdef.CodeUnsupportedRuntime error is returned when either is unusable
func Check(ctx context.Context, r runner.CommandRunner, req Requirements) (*Report, error) {
	if req.MinMajor <= 0 {
		req.MinMajor = DefaultMinMajor
	}
	if req.PackageManager == "" {
		req.PackageManager = "npm"
	}

	out, err := runner.Output(ctx, r, runner.Command{Name: "node", Args: []string{"--version"}})
	if err != nil {
		return nil, unavailable("Node.js", err)
	}

	v, err := ParseVersion(out)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeUnsupportedRuntime, err, "could not parse Node.js version %q", out)
	}

	if v.Major() < uint64(req.MinMajor) {
		return nil, errdef.New(errdef.CodeUnsupportedRuntime, "Node.js %d or newer is required, found %s", req.MinMajor, v.Original())
	}

	pmv, err := runner.Output(ctx, r, runner.Command{Name: req.PackageManager, Args: []string{"--version"}})
	if err != nil {
		return nil, unavailable(req.PackageManager, err)
	}

	return &Report{Node: v, PackageManager: req.PackageManager, PackageManagerVersion: pmv}, nil
}

// ParseVersion parses version output like v20.11.1 tolerating the v prefix
func ParseVersion(out string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(out), "v"))
}

func unavailable(what string, err error) error {
	if errors.Is(err, runner.ErrNotFound) {
		return errdef.Wrap(errdef.CodeUnsupportedRuntime, err, "%s is not installed", what)
	}

	return errdef.Wrap(errdef.CodeUnsupportedRuntime, err, "%s is not usable", what)
}
