// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"

	"github.com/CloudyKit/jet/v6"
	"github.com/nextkit/scaffold"
	"github.com/nextkit/scaffold/internal/config"
	"github.com/nextkit/scaffold/internal/resolver"
)

// TemplateData is passed to every project and feature template
type TemplateData struct {
	// Name is the project name, in feature mode the working directory name
	Name string
	// Feature is the feature being rendered, empty for project templates
	Feature         string
	PackageManager  string
	TestRunner      string
	SourceDirectory string
	// AliasPrefix is the import alias without its wildcard, like @/
	AliasPrefix string
	Prettier    bool
	Tailwind    bool
	HasTests    bool
	// Directories are the directories created alongside the template
	Directories []string
}

var purposes = map[string]string{
	"__tests__":  "Tests",
	"components": "Reusable UI components",
	"containers": "Components wired to data and state",
	"data":       "Static data and fixtures",
	"features":   "Self contained feature modules",
	"hooks":      "React hooks",
	"lib":        "Framework independent helpers",
	"providers":  "React context providers",
	"queries":    "Data fetching queries",
	"services":   "API clients and services",
	"store":      "Client side state",
	"styles":     "Global stylesheets",
	"types":      "TypeScript types",
}

func purpose(dir string) string {
	return purposes[dir]
}

func templateData(st *State, feature string, dirs []string) TemplateData {
	cfg := st.Config

	name := st.Name
	if st.Mode == resolver.ModeFeature {
		name = filepath.Base(st.WorkDir)
	}

	return TemplateData{
		Name:            name,
		Feature:         feature,
		PackageManager:  cfg.PackageManager,
		TestRunner:      cfg.TestRunner,
		SourceDirectory: cfg.SourceDirectory,
		AliasPrefix:     strings.TrimSuffix(cfg.Generator.ImportAlias, "*"),
		Prettier:        cfg.Prettier,
		Tailwind:        cfg.Generator.Tailwind,
		HasTests:        cfg.HasTests(),
		Directories:     dirs,
	}
}

// renderer renders bundled into target unless the configured templates
// directory has a sub directory named sub, the configured engine only
// applies to such custom templates
func (s *steps) renderer(cfg *config.Config, bundled fs.FS, sub string, target string) (*scaffold.Scaffold, error) {
	sc := scaffold.Config{
		TargetDirectory: target,
		Source:          bundled,
		SkipEmpty:       true,
		Post:            cfg.PostSteps(),
	}

	custom := false
	if cfg.TemplatesDirectory != "" {
		dir := filepath.Join(cfg.TemplatesDirectory, sub)
		stat, err := os.Stat(dir)
		if err == nil && stat.IsDir() {
			sc.Source = nil
			sc.SourceDirectory = dir
			custom = true
			s.log.Debugf("Using %s templates from %s", sub, dir)
		}
	}

	var (
		r   *scaffold.Scaffold
		err error
	)

	if custom && cfg.Engine == config.EngineJet {
		r, err = scaffold.NewJet(sc, map[string]jet.Func{
			"purpose": func(a jet.Arguments) reflect.Value {
				a.RequireNumOfArguments("purpose", 1, 1)
				return reflect.ValueOf(purpose(a.Get(0).String()))
			},
		})
	} else {
		r, err = scaffold.New(sc, template.FuncMap{"purpose": purpose})
	}
	if err != nil {
		return nil, err
	}

	r.Logger(s.log)
	r.Runner(s.deps.Runner)

	return r, nil
}
