// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nextkit/scaffold/internal/assets"
	"github.com/nextkit/scaffold/internal/config"
	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/layout"
	"github.com/nextkit/scaffold/internal/nodeenv"
	"github.com/nextkit/scaffold/internal/pkgjson"
	"github.com/nextkit/scaffold/internal/relocate"
	"github.com/nextkit/scaffold/internal/validator"
)

const workflowsQuestion = "Add GitHub Actions workflows?"

type steps struct {
	deps Deps
	log  Logger
}

func newSteps(deps Deps) *steps {
	deps = withDefaults(deps)

	return &steps{deps: deps, log: deps.Log}
}

func (s *steps) runtime(ctx context.Context, st *State) error {
	if st.Config.SkipRuntimeCheck {
		s.log.Infof("Skipping the Node.js runtime check")
		return nil
	}

	report, err := nodeenv.Check(ctx, s.deps.Runner, nodeenv.Requirements{
		MinMajor:       st.Config.MinNodeMajor,
		PackageManager: st.Config.PackageManager,
	})
	if err != nil {
		return err
	}

	st.Runtime = report
	s.log.Infof("Using Node.js %s with %s %s", report.Node.Original(), report.PackageManager, report.PackageManagerVersion)

	return nil
}

func (s *steps) projectTarget(_ context.Context, st *State) error {
	if !validator.IsPathSafe(st.Name) {
		return errdef.New(errdef.CodeInvalidName, "invalid project name %q: must be a single path element", st.Name)
	}

	info, err := os.Stat(st.Root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return errdef.Wrap(errdef.CodeFilesystem, err, "checking %s", st.Root)
	}

	kind := "Directory"
	if !info.IsDir() {
		kind = "File"
	}

	ok, err := s.deps.Prompter.Confirm(fmt.Sprintf("%s %s already exists, remove it and continue?", kind, st.Root), false)
	if err != nil {
		return errdef.Wrap(errdef.CodeTargetExists, err, "%s already exists", st.Root)
	}
	if !ok {
		return errdef.New(errdef.CodeTargetExists, "%s already exists", st.Root)
	}

	s.log.Warnf("Removing existing %s", st.Root)

	err = os.RemoveAll(st.Root)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "removing %s", st.Root)
	}

	return nil
}

func (s *steps) featureTarget(_ context.Context, st *State) error {
	if !validator.IsPathSafe(st.Name) {
		return errdef.New(errdef.CodeInvalidName, "invalid feature name %q: must be a single path element", st.Name)
	}

	info, err := os.Stat(st.Root)
	switch {
	case err == nil && !info.IsDir():
		return errdef.New(errdef.CodeFilesystem, "%s exists and is not a directory", st.Root)
	case err == nil:
		s.log.Infof("Feature %s already exists, merging into %s", st.Name, st.Root)
	case !errors.Is(err, fs.ErrNotExist):
		return errdef.Wrap(errdef.CodeFilesystem, err, "checking %s", st.Root)
	}

	_, err = os.Stat(filepath.Join(st.WorkDir, "package.json"))
	if err != nil {
		s.log.Warnf("No package.json in %s, features are normally added from a project root", st.WorkDir)
	}

	return nil
}

func (s *steps) generator(ctx context.Context, st *State) error {
	cmd, err := st.Config.GeneratorCommand(st.Name)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid generator command")
	}

	cmd.Dir = st.WorkDir
	cmd.Stdin = s.deps.Stdin
	cmd.Stdout = s.deps.Stdout
	cmd.Stderr = s.deps.Stderr

	s.log.Infof("Running %s", cmd.String())

	status, err := s.deps.Runner.Run(ctx, cmd)
	if err != nil {
		return errdef.Wrap(errdef.CodeGeneratorFailure, err, "could not run %s", cmd.Name)
	}
	if !status.Success() {
		return errdef.New(errdef.CodeGeneratorFailure, "%s exited with code %d", cmd.String(), status.Code)
	}

	info, err := os.Stat(st.Root)
	if err != nil || !info.IsDir() {
		return errdef.New(errdef.CodeGeneratorFailure, "%s did not create %s", cmd.Name, st.Root)
	}

	return nil
}

// placeholderPath is the example feature inside a new project, slash separated relative to the root
func placeholderPath(cfg *config.Config) string {
	return path.Join(cfg.SourceDirectory, "features", cfg.PlaceholderFeature)
}

func (s *steps) projectDirectories(_ context.Context, st *State) error {
	cfg := st.Config

	base, err := layout.NewManifest(cfg.ProjectDirectories()...)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid project directories")
	}

	feature, err := layout.NewManifest(cfg.FeatureDirectories...)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid feature directories")
	}

	m := base.Under(cfg.SourceDirectory).Merge(feature.Under(placeholderPath(cfg)))

	return s.materialize(st, st.Root, m)
}

func (s *steps) featureDirectories(_ context.Context, st *State) error {
	m, err := layout.NewManifest(st.Config.FeatureDirectories...)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid feature directories")
	}

	if st.DryRun {
		for _, dir := range m {
			_, err := os.Stat(filepath.Join(st.Root, filepath.FromSlash(dir)))
			st.PlannedDirectories = append(st.PlannedDirectories, DirectoryPlan{Path: dir, Exists: err == nil})
		}

		return nil
	}

	return s.materialize(st, st.Root, m)
}

func (s *steps) materialize(st *State, root string, m layout.Manifest) error {
	res, err := layout.Materialize(root, m, layout.Options{KeepFiles: st.Config.KeepFiles})
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "creating directories")
	}

	st.Directories = res

	for _, d := range res.Existed {
		s.log.Infof("Directory %s already exists", d)
	}
	for _, d := range res.Created {
		s.log.Debugf("Created directory %s", d)
	}
	s.log.Infof("Created %d directories in %s", len(res.Created), root)

	return nil
}

func (s *steps) projectTemplates(ctx context.Context, st *State) error {
	cfg := st.Config

	r, err := s.renderer(cfg, s.deps.ProjectTemplates, "project", st.Root)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid project templates")
	}

	err = r.Render(ctx, templateData(st, "", cfg.ProjectDirectories()))
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "rendering project templates")
	}

	st.Changed = append(st.Changed, r.ChangedFiles()...)

	return nil
}

func (s *steps) featurePlaceholder(ctx context.Context, st *State) error {
	cfg := st.Config
	rel := placeholderPath(cfg)

	r, err := s.renderer(cfg, s.deps.FeatureTemplates, "feature", filepath.Join(st.Root, filepath.FromSlash(rel)))
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid feature templates")
	}

	err = r.Render(ctx, templateData(st, cfg.PlaceholderFeature, cfg.FeatureDirectories))
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "rendering feature templates")
	}

	for _, f := range r.ChangedFiles() {
		st.Changed = append(st.Changed, path.Join(rel, f))
	}

	return nil
}

func (s *steps) featureTemplates(ctx context.Context, st *State) error {
	cfg := st.Config

	r, err := s.renderer(cfg, s.deps.FeatureTemplates, "feature", st.Root)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "invalid feature templates")
	}

	data := templateData(st, st.Name, cfg.FeatureDirectories)

	if st.DryRun {
		st.PlannedFiles, err = r.RenderNoop(data)
		if err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "planning feature templates")
		}

		return nil
	}

	err = r.Render(ctx, data)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "rendering feature templates")
	}

	st.Changed = append(st.Changed, r.ChangedFiles()...)

	return nil
}

// importPath is how a file in dir imports target, using the import alias when one is configured
func importPath(cfg *config.Config, srcRoot string, dir string, target string) (string, error) {
	if cfg.Generator.ImportAlias != "" {
		rel, err := filepath.Rel(srcRoot, target)
		if err != nil {
			return "", err
		}

		return cfg.AliasPath(rel), nil
	}

	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return "", err
	}

	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}

	return rel, nil
}

func (s *steps) relocate(_ context.Context, st *State) error {
	cfg := st.Config
	src := st.SourceRoot()
	from := filepath.Join(src, filepath.FromSlash(cfg.Stylesheet.From))
	to := filepath.Join(src, filepath.FromSlash(cfg.Stylesheet.To))

	moved, err := relocate.Move(from, to)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "moving %s", from)
	}
	if !moved {
		s.log.Infof("%s does not exist, not relocating it", from)
		return nil
	}

	st.Relocated = true
	s.log.Infof("Moved %s to %s", from, to)

	if cfg.Stylesheet.Layout == "" {
		return nil
	}

	layoutFile := filepath.Join(src, filepath.FromSlash(cfg.Stylesheet.Layout))

	oldImport, err := importPath(&config.Config{}, src, filepath.Dir(layoutFile), from)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "resolving stylesheet import")
	}

	newImport, err := importPath(cfg, src, filepath.Dir(layoutFile), to)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "resolving stylesheet import")
	}

	rewritten := false
	for _, q := range []string{`"`, `'`} {
		changed, err := relocate.RewriteImport(layoutFile, q+oldImport+q, q+newImport+q)
		if err != nil {
			return errdef.Wrap(errdef.CodeFilesystem, err, "updating %s", layoutFile)
		}
		rewritten = rewritten || changed
	}

	if rewritten {
		s.log.Infof("Updated the stylesheet import in %s to %s", layoutFile, newImport)
	} else {
		s.log.Debugf("No import of %s found in %s", oldImport, layoutFile)
	}

	return nil
}

func (s *steps) manifest(_ context.Context, st *State) error {
	scripts := st.Config.ScriptEntries()
	if len(scripts) == 0 {
		s.log.Debugf("No scripts to add to package.json")
		return nil
	}

	err := pkgjson.Patch(filepath.Join(st.Root, "package.json"), scripts)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(scripts))
	for k := range scripts {
		names = append(names, k)
	}
	sort.Strings(names)

	st.Changed = append(st.Changed, "package.json")
	s.log.Infof("Added scripts %s to package.json", strings.Join(names, ", "))

	return nil
}

func (s *steps) workflows(_ context.Context, st *State) error {
	switch st.Config.Workflows {
	case config.WorkflowsNever:
		s.log.Debugf("Not adding workflows")
		return nil

	case config.WorkflowsAsk:
		ok, err := s.deps.Prompter.Confirm(workflowsQuestion, false)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Infof("Not adding GitHub Actions workflows")
			return nil
		}
	}

	pm := st.Config.PackageManager
	info, err := fs.Stat(s.deps.Workflows, pm)
	if err != nil || !info.IsDir() {
		return errdef.New(errdef.CodeFilesystem, "no workflows available for %s", pm)
	}

	src, err := fs.Sub(s.deps.Workflows, pm)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "reading %s workflows", pm)
	}

	copied, err := assets.Copy(src, st.Root)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "copying workflows")
	}

	st.Workflows = copied
	st.Changed = append(st.Changed, copied...)
	s.log.Infof("Added %d %s workflow files", len(copied), pm)

	return nil
}
