// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"text/template"

	"github.com/CloudyKit/jet/v6"
	"github.com/nextkit/scaffold/internal/runner"
	"github.com/nextkit/scaffold/internal/sprig"
)

// Config configures a scaffolding operation
type Config struct {
	// TargetDirectory is where to place the resulting rendered files, it is created when absent
	// and existing files in it are overwritten
	TargetDirectory string `yaml:"target"`
	// SourceDirectory reads templates from a directory, mutually exclusive with Source
	SourceDirectory string `yaml:"source_directory"`
	// Source reads templates from a file system, typically an embedded one
	Source fs.FS `yaml:"-"`
	// Post configures post-processing of files using filepath globs
	Post []map[string]string `yaml:"post"`
	// SkipEmpty skips files that are only white space after rendering
	SkipEmpty bool `yaml:"skip_empty"`
	// Sets a custom template delimiter, useful for generating templates from templates
	CustomLeftDelimiter string `yaml:"left_delimiter"`
	// Sets a custom template delimiter, useful for generating templates from templates
	CustomRightDelimiter string `yaml:"right_delimiter"`
}

type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
}

var errSkippedEmpty = errors.New("skipped rendering")

type engineType int

const (
	engineGoTemplate engineType = iota
	engineJet
)

// FileAction represents the type of change a file would undergo during rendering
type FileAction string

const (
	FileActionAdd    FileAction = "add"
	FileActionUpdate FileAction = "update"
	FileActionEqual  FileAction = "equal"
)

// PlannedFile represents a file and the action that would be taken on it during rendering
type PlannedFile struct {
	Path   string
	Action FileAction
}

type Scaffold struct {
	cfg          *Config
	engine       engineType
	funcs        template.FuncMap
	jetFuncs     map[string]jet.Func
	log          Logger
	runner       runner.CommandRunner
	source       fs.FS
	ctx          context.Context
	changedFiles []string
	// planned collects rendered content instead of writing it when set
	planned map[string][]byte
}

// New creates a new scaffold instance
func New(cfg Config, funcs template.FuncMap) (*Scaffold, error) {
	err := validateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return &Scaffold{cfg: &cfg, funcs: funcs, source: sourceFS(&cfg), runner: runner.NewExec()}, nil
}

// NewJet creates a new scaffold instance using the Jet template engine
func NewJet(cfg Config, funcs map[string]jet.Func) (*Scaffold, error) {
	err := validateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return &Scaffold{cfg: &cfg, engine: engineJet, jetFuncs: funcs, source: sourceFS(&cfg), runner: runner.NewExec()}, nil
}

func sourceFS(cfg *Config) fs.FS {
	if cfg.Source != nil {
		return cfg.Source
	}

	return os.DirFS(cfg.SourceDirectory)
}

func validateConfig(cfg *Config) error {
	if cfg.TargetDirectory == "" {
		return fmt.Errorf("target is required")
	}

	var err error
	cfg.TargetDirectory, err = filepath.Abs(cfg.TargetDirectory)
	if err != nil {
		return fmt.Errorf("invalid target %s: %v", cfg.TargetDirectory, err)
	}

	if cfg.Source == nil && cfg.SourceDirectory == "" {
		return fmt.Errorf("no sources provided")
	}

	if cfg.Source != nil && cfg.SourceDirectory != "" {
		return fmt.Errorf("only one of source and source directory can be set")
	}

	if cfg.SourceDirectory != "" {
		_, err := os.Stat(cfg.SourceDirectory)
		if err != nil {
			return fmt.Errorf("cannot read source directory: %w", err)
		}
	}

	stat, err := os.Stat(cfg.TargetDirectory)
	if err == nil && !stat.IsDir() {
		return fmt.Errorf("target %s is not a directory", cfg.TargetDirectory)
	}

	return nil
}

// RenderString renders a string using the same functions and behavior as the scaffold, including custom delimiters
func (s *Scaffold) RenderString(str string, data any) (string, error) {
	res, err := s.renderTemplateBytes("string", []byte(str), data)
	if err != nil {
		return "", err
	}

	return string(res), nil
}

// Logger configures a logger to use, no logging is done without this
func (s *Scaffold) Logger(log Logger) {
	s.log = log
}

// Runner sets the runner used for post-processing commands
func (s *Scaffold) Runner(r runner.CommandRunner) {
	s.runner = r
}

func (s *Scaffold) saveAndPostFile(f string, data []byte) error {
	err := s.saveFile(f, data)
	if err != nil {
		return err
	}

	err = s.postFile(f)
	if err != nil {
		return err
	}

	if s.log != nil && s.planned == nil {
		s.log.Infof("Rendered %s", f)
	}

	return nil
}

func (s *Scaffold) renderAndPostFile(out string, t string, data any) error {
	res, err := s.renderTemplateFile(t, data)
	switch {
	case errors.Is(err, errSkippedEmpty):
		if s.log != nil {
			s.log.Debugf("Skipping empty file %v", out)
		}

		return nil
	case err != nil:
		return err
	}

	return s.saveAndPostFile(out, res)
}

func (s *Scaffold) templateFuncs() template.FuncMap {
	funcs := sprig.FuncMap()
	for k, v := range s.funcs {
		funcs[k] = v
	}

	funcs["write"] = func(out string, content string) (string, error) {
		err := s.saveAndPostFile(filepath.Join(s.cfg.TargetDirectory, out), []byte(content))
		return "", err
	}

	funcs["render"] = func(templ string, data any) (string, error) {
		name, err := s.validateSourcePath(templ)
		if err != nil {
			return "", err
		}
		res, err := s.renderTemplateFile(name, data)
		return string(res), err
	}

	return funcs
}

func (s *Scaffold) jetTemplateFuncs() map[string]jet.Func {
	funcs := sprig.JetFuncMap()
	for k, v := range s.jetFuncs {
		funcs[k] = v
	}

	funcs["write"] = func(args jet.Arguments) reflect.Value {
		args.RequireNumOfArguments("write", 2, 2)

		var out, content string
		if err := args.ParseInto(&out, &content); err != nil {
			args.Panicf("write: %v", err)
		}

		if err := s.saveAndPostFile(filepath.Join(s.cfg.TargetDirectory, out), []byte(content)); err != nil {
			args.Panicf("write: %v", err)
		}

		return reflect.ValueOf("")
	}

	funcs["render"] = func(args jet.Arguments) reflect.Value {
		args.RequireNumOfArguments("render", 2, 2)

		templ := args.Get(0).String()
		data := args.Get(1).Interface()

		name, err := s.validateSourcePath(templ)
		if err != nil {
			args.Panicf("render: %v", err)
		}

		res, err := s.renderTemplateFile(name, data)
		if err != nil {
			args.Panicf("render: %v", err)
		}

		return reflect.ValueOf(string(res))
	}

	return funcs
}

func (s *Scaffold) renderTemplateFile(name string, data any) ([]byte, error) {
	td, err := fs.ReadFile(s.source, name)
	if err != nil {
		return nil, err
	}

	return s.renderTemplateBytes(path.Base(name), td, data)
}

func (s *Scaffold) renderTemplateBytes(name string, tmpl []byte, data any) ([]byte, error) {
	switch s.engine {
	case engineJet:
		return s.renderTemplateBytesJet(name, tmpl, data)
	default:
		return s.renderTemplateBytesGoTempl(name, tmpl, data)
	}
}

func (s *Scaffold) renderTemplateBytesGoTempl(name string, tmpl []byte, data any) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	templ := template.New(name)
	templ.Funcs(s.templateFuncs())

	if s.cfg.CustomLeftDelimiter != "" && s.cfg.CustomRightDelimiter != "" {
		templ.Delims(s.cfg.CustomLeftDelimiter, s.cfg.CustomRightDelimiter)
	}

	templ, err := templ.Parse(string(tmpl))
	if err != nil {
		return nil, fmt.Errorf("parsing template %v failed: %w", name, err)
	}

	err = templ.Execute(buf, data)
	if err != nil {
		return nil, err
	}

	if s.cfg.SkipEmpty && len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return nil, errSkippedEmpty
	}

	return buf.Bytes(), nil
}

func (s *Scaffold) renderTemplateBytesJet(name string, tmpl []byte, data any) ([]byte, error) {
	loader := jet.NewInMemLoader()
	loader.Set(name, string(tmpl))

	opts := []jet.Option{jet.WithSafeWriter(nil)}
	if s.cfg.CustomLeftDelimiter != "" && s.cfg.CustomRightDelimiter != "" {
		opts = append(opts, jet.WithDelims(s.cfg.CustomLeftDelimiter, s.cfg.CustomRightDelimiter))
	}

	set := jet.NewSet(loader, opts...)

	for k, fn := range s.jetTemplateFuncs() {
		set.AddGlobalFunc(k, fn)
	}

	t, err := set.GetTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("parsing template %v failed: %w", name, err)
	}

	buf := bytes.NewBuffer([]byte{})
	err = t.Execute(buf, nil, data)
	if err != nil {
		return nil, err
	}

	if s.cfg.SkipEmpty && len(bytes.TrimSpace(buf.Bytes())) == 0 {
		return nil, errSkippedEmpty
	}

	return buf.Bytes(), nil
}

func containedInDir(path string, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// validateSourcePath turns a template reference into a name inside the source file system
func (s *Scaffold) validateSourcePath(name string) (string, error) {
	clean := path.Clean(filepath.ToSlash(name))
	if !fs.ValidPath(clean) || clean == "." {
		return "", fmt.Errorf("%s is not in source directory", name)
	}

	return clean, nil
}

func (s *Scaffold) saveFile(out string, content []byte) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}

	if !containedInDir(absOut, s.cfg.TargetDirectory) {
		return fmt.Errorf("%s is not in target directory %s", out, s.cfg.TargetDirectory)
	}

	rel, err := filepath.Rel(s.cfg.TargetDirectory, absOut)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	if s.planned != nil {
		s.planned[rel] = content
		return nil
	}

	err = os.MkdirAll(filepath.Dir(absOut), 0755)
	if err != nil {
		return err
	}

	err = os.WriteFile(absOut, content, 0644)
	if err != nil {
		return err
	}

	s.changedFiles = append(s.changedFiles, rel)

	return nil
}

func (s *Scaffold) postFile(f string) error {
	if s.planned != nil {
		return nil
	}

	for _, p := range s.cfg.Post {
		globs := make([]string, 0, len(p))
		for g := range p {
			globs = append(globs, g)
		}
		sort.Strings(globs)

		for _, g := range globs {
			matched, err := filepath.Match(g, filepath.Base(f))
			if err != nil {
				return err
			}

			if !matched {
				continue
			}

			cmd, err := runner.Parse(p[g])
			if err != nil {
				return err
			}

			hasPlaceholder := false
			for i, a := range cmd.Args {
				if strings.Contains(a, "{}") {
					cmd.Args[i] = strings.ReplaceAll(a, "{}", f)
					hasPlaceholder = true
				}
			}

			if !hasPlaceholder {
				cmd.Args = append(cmd.Args, f)
			}

			out := &bytes.Buffer{}
			cmd.Dir = s.cfg.TargetDirectory
			cmd.Stdout = out
			cmd.Stderr = out

			if s.log != nil {
				s.log.Infof("Post processing using: %s", cmd.String())
			}

			status, err := s.runner.Run(s.context(), cmd)
			if err == nil && !status.Success() {
				err = fmt.Errorf("exit code %d", status.Code)
			}
			if err != nil {
				return fmt.Errorf("failed to post process %s\nerror: %w\noutput: %q", f, err, out.String())
			}
		}
	}

	return nil
}

func (s *Scaffold) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}

	return s.ctx
}

// ChangedFiles returns the list of files that were created or modified during
// the most recent Render call. Paths are relative to the target directory and
// always use forward slashes as separators.
func (s *Scaffold) ChangedFiles() []string {
	return s.changedFiles
}

// RenderNoop renders every template in memory and compares the result against
// the target directory. It returns the files with their planned action (add,
// update, equal) without creating or modifying anything, post-processing is
// not run. The caller's ChangedFiles state is preserved.
func (s *Scaffold) RenderNoop(data any) ([]PlannedFile, error) {
	s.planned = map[string][]byte{}
	defer func() { s.planned = nil }()

	err := s.walk(data)
	if err != nil {
		return nil, err
	}

	var result []PlannedFile
	for rel, content := range s.planned {
		existing, err := os.ReadFile(filepath.Join(s.cfg.TargetDirectory, filepath.FromSlash(rel)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result = append(result, PlannedFile{Path: rel, Action: FileActionAdd})
		case err != nil:
			return nil, err
		case bytes.Equal(existing, content):
			result = append(result, PlannedFile{Path: rel, Action: FileActionEqual})
		default:
			result = append(result, PlannedFile{Path: rel, Action: FileActionUpdate})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result, nil
}

// Render creates the target directory when needed and places all files into it
// after template processing and post-processing, existing files are overwritten
func (s *Scaffold) Render(ctx context.Context, data any) error {
	s.changedFiles = nil
	s.ctx = ctx
	defer func() { s.ctx = nil }()

	err := os.MkdirAll(s.cfg.TargetDirectory, 0755)
	if err != nil {
		return err
	}

	return s.walk(data)
}

func (s *Scaffold) walk(data any) error {
	return fs.WalkDir(s.source, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if name == "." {
			return nil
		}

		if d.Name() == "_partials" {
			return fs.SkipDir
		}

		out := filepath.Join(s.cfg.TargetDirectory, filepath.FromSlash(name))
		switch {
		case d.IsDir():
			if s.planned != nil {
				return nil
			}

			return os.MkdirAll(out, 0755)

		case d.Type().IsRegular():
			return s.renderAndPostFile(out, name, data)

		default:
			return fmt.Errorf("invalid file in source: %v", d.Name())
		}
	})
}
