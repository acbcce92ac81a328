// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nextkit/scaffold"
)

func (s *steps) projectSummary(_ context.Context, st *State) error {
	out := s.deps.Stdout

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s in %s\n", text.FgGreen.Sprint("Created project"), st.Name, st.Root)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", st.Name)
	if st.Config.SkipInstall && len(st.Config.DevPackages()) > 0 {
		fmt.Fprintf(out, "  %s\n", st.Config.InstallCommand(st.Root, st.Config.DevPackages()...).String())
	}
	fmt.Fprintf(out, "  %s run dev\n", st.Config.PackageManager)
	fmt.Fprintln(out)

	return nil
}

func (s *steps) featureSummary(_ context.Context, st *State) error {
	if st.DryRun {
		s.printPlan(st)
		return nil
	}

	rel, err := filepath.Rel(st.WorkDir, st.Root)
	if err != nil {
		rel = st.Root
	}

	fmt.Fprintf(s.deps.Stdout, "%s %s in %s\n", text.FgGreen.Sprint("Created feature"), st.Name, rel)

	return nil
}

func (s *steps) printPlan(st *State) {
	rel := func(p string) string {
		r, err := filepath.Rel(st.WorkDir, filepath.Join(st.Root, filepath.FromSlash(p)))
		if err != nil {
			return p
		}
		return filepath.ToSlash(r)
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.deps.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Planned changes for feature %s", st.Name))
	t.AppendHeader(table.Row{"Action", "Path"})

	for _, d := range st.PlannedDirectories {
		action := "create"
		if d.Exists {
			action = "exists"
		}
		t.AppendRow(table.Row{action, rel(d.Path) + "/"})
	}

	for _, f := range st.PlannedFiles {
		action := string(f.Action)
		switch f.Action {
		case scaffold.FileActionAdd:
			action = text.FgGreen.Sprint(action)
		case scaffold.FileActionUpdate:
			action = text.FgYellow.Sprint(action)
		}
		t.AppendRow(table.Row{action, rel(f.Path)})
	}

	t.Render()
}
