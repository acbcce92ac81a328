// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nextkit/scaffold/internal/errdef"
)

func (s *steps) install(ctx context.Context, st *State) error {
	cfg := st.Config

	pkgs := cfg.DevPackages()
	if len(pkgs) == 0 {
		s.log.Debugf("No development packages to install")
		return nil
	}

	if cfg.SkipInstall {
		s.log.Infof("Skipping installation of %s", strings.Join(pkgs, ", "))
		return nil
	}

	// output is only shown when the install fails
	out := &bytes.Buffer{}
	cmd := cfg.InstallCommand(st.Root, pkgs...)
	cmd.Stdout = out
	cmd.Stderr = out

	s.log.Debugf("Running %s", cmd.String())

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(s.deps.Stderr))
	sp.Suffix = fmt.Sprintf(" Installing %s using %s", strings.Join(pkgs, ", "), cmd.Name)
	sp.Start()
	status, err := s.deps.Runner.Run(ctx, cmd)
	sp.Stop()

	if err == nil && !status.Success() {
		err = fmt.Errorf("%s exited with code %d", cmd.Name, status.Code)
	}
	if err != nil {
		s.deps.Stderr.Write(out.Bytes())
		return errdef.Wrap(errdef.CodeInstallFailure, err, "installing %s", strings.Join(pkgs, ", "))
	}

	st.Installed = pkgs
	s.log.Infof("Installed %s", strings.Join(pkgs, ", "))

	return nil
}
