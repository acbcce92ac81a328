// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline scaffolds projects and features as an ordered list of
// steps sharing one explicit State.
//
// A project run invokes the external generator, lays out the source tree,
// renders templates, installs tooling and patches package.json. A feature run
// only lays out and renders a single feature directory inside an existing
// project. Steps run sequentially and stop at the first error, nothing is
// rolled back.
package pipeline

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nextkit/scaffold"
	"github.com/nextkit/scaffold/internal/config"
	"github.com/nextkit/scaffold/internal/layout"
	"github.com/nextkit/scaffold/internal/nodeenv"
	"github.com/nextkit/scaffold/internal/prompt"
	"github.com/nextkit/scaffold/internal/resolver"
	"github.com/nextkit/scaffold/internal/runner"
	"github.com/nextkit/scaffold/templates"
)

// Logger is the logging used by steps
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// Deps are the collaborators steps use to reach the outside world
type Deps struct {
	Runner   runner.CommandRunner
	Prompter prompt.Prompter
	Log      Logger
	// Stdin, Stdout and Stderr are handed to the generator unfiltered
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// ProjectTemplates, FeatureTemplates and Workflows default to the bundled trees
	ProjectTemplates fs.FS
	FeatureTemplates fs.FS
	Workflows        fs.FS
}

// DirectoryPlan is a directory a dry run would create or find existing
type DirectoryPlan struct {
	Path   string
	Exists bool
}

// State is everything a run knows, it is passed explicitly to every step
type State struct {
	Mode   resolver.Mode
	Name   string
	Config *config.Config
	// WorkDir is the directory the command was invoked in
	WorkDir string
	// Root is the project or feature directory being scaffolded
	Root   string
	DryRun bool

	Runtime     *nodeenv.Report
	Directories *layout.Result
	// Changed lists files written, relative to Root
	Changed []string
	// Relocated is set when the global stylesheet was moved
	Relocated bool
	Installed []string
	Workflows []string

	PlannedDirectories []DirectoryPlan
	PlannedFiles       []scaffold.PlannedFile
}

// NewState creates the state for inv invoked in workDir
func NewState(inv resolver.Invocation, cfg *config.Config, workDir string) *State {
	st := &State{
		Mode:    inv.Mode,
		Name:    inv.Name,
		Config:  cfg,
		WorkDir: workDir,
	}

	switch inv.Mode {
	case resolver.ModeFeature:
		st.Root = filepath.Join(workDir, cfg.SourceDirectory, "features", inv.Name)
	default:
		st.Root = filepath.Join(workDir, inv.Name)
	}

	return st
}

// SourceRoot is the source directory of the project being scaffolded
func (s *State) SourceRoot() string {
	if s.Mode == resolver.ModeFeature {
		return filepath.Join(s.WorkDir, s.Config.SourceDirectory)
	}

	return filepath.Join(s.Root, s.Config.SourceDirectory)
}

// Step is one unit of work
type Step interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

type step struct {
	name string
	run  func(ctx context.Context, st *State) error
}

func (s *step) Name() string { return s.name }

func (s *step) Run(ctx context.Context, st *State) error { return s.run(ctx, st) }

// Pipeline is an ordered list of steps
type Pipeline struct {
	steps []Step
	log   Logger
}

// Project is the pipeline creating a new project
func Project(deps Deps) *Pipeline {
	s := newSteps(deps)

	return &Pipeline{
		log: s.log,
		steps: []Step{
			&step{"runtime", s.runtime},
			&step{"target", s.projectTarget},
			&step{"generator", s.generator},
			&step{"directories", s.projectDirectories},
			&step{"templates", s.projectTemplates},
			&step{"feature placeholder", s.featurePlaceholder},
			&step{"relocate", s.relocate},
			&step{"install", s.install},
			&step{"manifest", s.manifest},
			&step{"workflows", s.workflows},
			&step{"summary", s.projectSummary},
		},
	}
}

// Feature is the pipeline adding a feature to the project in the working directory
func Feature(deps Deps) *Pipeline {
	s := newSteps(deps)

	return &Pipeline{
		log: s.log,
		steps: []Step{
			&step{"target", s.featureTarget},
			&step{"directories", s.featureDirectories},
			&step{"templates", s.featureTemplates},
			&step{"summary", s.featureSummary},
		},
	}
}

// For selects the pipeline for mode
func For(mode resolver.Mode, deps Deps) *Pipeline {
	if mode == resolver.ModeFeature {
		return Feature(deps)
	}

	return Project(deps)
}

// Steps are the names of the steps in order
func (p *Pipeline) Steps() []string {
	var res []string
	for _, s := range p.steps {
		res = append(res, s.Name())
	}

	return res
}

// Run executes every step in order stopping at the first error or when ctx is done
func (p *Pipeline) Run(ctx context.Context, st *State) error {
	for _, s := range p.steps {
		err := ctx.Err()
		if err != nil {
			return err
		}

		p.log.Debugf("Running step %s", s.Name())

		err = s.Run(ctx, st)
		if err != nil {
			return err
		}
	}

	return nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

func withDefaults(deps Deps) Deps {
	if deps.Runner == nil {
		deps.Runner = runner.NewExec()
	}
	if deps.Prompter == nil {
		deps.Prompter = prompt.New()
	}
	if deps.Log == nil {
		deps.Log = nopLogger{}
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.ProjectTemplates == nil {
		deps.ProjectTemplates = templates.Project()
	}
	if deps.FeatureTemplates == nil {
		deps.FeatureTemplates = templates.Feature()
	}
	if deps.Workflows == nil {
		deps.Workflows = templates.Workflows()
	}

	return deps
}
