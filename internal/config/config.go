// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the single record describing how projects and
// features are scaffolded.
//
// Settings are read, in increasing priority, from built in defaults, a YAML
// file (.nextkit.yaml in the working directory unless one is given) and
// NEXTKIT_ prefixed environment variables. Command line flags are applied on
// top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/runner"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	fileName  = ".nextkit"
	fileType  = "yaml"
	envPrefix = "NEXTKIT"
)

// Package managers
const (
	NPM  = "npm"
	PNPM = "pnpm"
	Yarn = "yarn"
	Bun  = "bun"
)

// Test runners
const (
	TestRunnerNone   = "none"
	TestRunnerJest   = "jest"
	TestRunnerVitest = "vitest"
)

// Workflow policies
const (
	WorkflowsAsk    = "ask"
	WorkflowsAlways = "always"
	WorkflowsNever  = "never"
)

// Template engines
const (
	EngineGo  = "go"
	EngineJet = "jet"
)

// Generator configures the external project generator
type Generator struct {
	Command     string   `mapstructure:"command" yaml:"command"`
	TypeScript  bool     `mapstructure:"typescript" yaml:"typescript"`
	ESLint      bool     `mapstructure:"eslint" yaml:"eslint"`
	Tailwind    bool     `mapstructure:"tailwind" yaml:"tailwind"`
	AppRouter   bool     `mapstructure:"app_router" yaml:"app_router"`
	SrcDir      bool     `mapstructure:"src_dir" yaml:"src_dir"`
	ImportAlias string   `mapstructure:"import_alias" yaml:"import_alias"`
	ExtraArgs   []string `mapstructure:"extra_args" yaml:"extra_args,omitempty"`
}

// Stylesheet is the generated global stylesheet and where it is moved to,
// both relative to the source directory
type Stylesheet struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
	// Layout is the file importing the stylesheet, its import is rewritten
	Layout string `mapstructure:"layout" yaml:"layout"`
}

// Config is the complete scaffolding configuration
type Config struct {
	PackageManager     string            `mapstructure:"package_manager" yaml:"package_manager"`
	Generator          Generator         `mapstructure:"generator" yaml:"generator"`
	Prettier           bool              `mapstructure:"prettier" yaml:"prettier"`
	TestRunner         string            `mapstructure:"test_runner" yaml:"test_runner"`
	Workflows          string            `mapstructure:"workflows" yaml:"workflows"`
	KeepFiles          bool              `mapstructure:"keep_files" yaml:"keep_files"`
	MinNodeMajor       int               `mapstructure:"min_node_major" yaml:"min_node_major"`
	SkipRuntimeCheck   bool              `mapstructure:"skip_runtime_check" yaml:"skip_runtime_check"`
	SkipInstall        bool              `mapstructure:"skip_install" yaml:"skip_install"`
	AssumeYes          bool              `mapstructure:"assume_yes" yaml:"assume_yes"`
	SourceDirectory    string            `mapstructure:"source_directory" yaml:"source_directory"`
	BaseDirectories    []string          `mapstructure:"base_directories" yaml:"base_directories"`
	FeatureDirectories []string          `mapstructure:"feature_directories" yaml:"feature_directories"`
	TestDirectories    []string          `mapstructure:"test_directories" yaml:"test_directories"`
	PlaceholderFeature string            `mapstructure:"placeholder_feature" yaml:"placeholder_feature"`
	Stylesheet         Stylesheet        `mapstructure:"stylesheet" yaml:"stylesheet"`
	Scripts            map[string]string `mapstructure:"scripts" yaml:"scripts,omitempty"`
	Post               map[string]string `mapstructure:"post" yaml:"post,omitempty"`
	TemplatesDirectory string            `mapstructure:"templates_directory" yaml:"templates_directory,omitempty"`
	Engine             string            `mapstructure:"engine" yaml:"engine"`
	ProjectNamePolicy  string            `mapstructure:"project_name_validation" yaml:"project_name_validation"`
	FeatureNamePolicy  string            `mapstructure:"feature_name_validation" yaml:"feature_name_validation"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("package_manager", NPM)
	v.SetDefault("generator.command", "npx create-next-app@latest")
	v.SetDefault("generator.typescript", true)
	v.SetDefault("generator.eslint", true)
	v.SetDefault("generator.tailwind", true)
	v.SetDefault("generator.app_router", true)
	v.SetDefault("generator.src_dir", true)
	v.SetDefault("generator.import_alias", "@/*")
	v.SetDefault("generator.extra_args", []string{})
	v.SetDefault("prettier", true)
	v.SetDefault("test_runner", TestRunnerJest)
	v.SetDefault("workflows", WorkflowsAsk)
	v.SetDefault("keep_files", false)
	v.SetDefault("min_node_major", 18)
	v.SetDefault("skip_runtime_check", false)
	v.SetDefault("skip_install", false)
	v.SetDefault("assume_yes", false)
	v.SetDefault("source_directory", "src")
	v.SetDefault("base_directories", []string{"components", "features", "hooks", "lib", "providers", "queries", "services", "store", "styles", "types"})
	v.SetDefault("feature_directories", []string{"components", "containers", "hooks", "services", "queries", "types", "data"})
	v.SetDefault("test_directories", []string{"__tests__"})
	v.SetDefault("placeholder_feature", "[feature-name]")
	v.SetDefault("stylesheet.from", "app/globals.css")
	v.SetDefault("stylesheet.to", "styles/globals.css")
	v.SetDefault("stylesheet.layout", "app/layout.tsx")
	v.SetDefault("scripts", map[string]string{})
	v.SetDefault("post", map[string]string{})
	v.SetDefault("templates_directory", "")
	v.SetDefault("engine", EngineGo)
	v.SetDefault("project_name_validation", "isPackageName(value) && isPathSafe(value)")
	v.SetDefault("feature_name_validation", "isPathSafe(value) && value matches '^[A-Za-z0-9][A-Za-z0-9._-]*$'")
}

// Default returns the built in configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	// defaults always decode
	_ = v.Unmarshal(cfg)

	return cfg
}

// Load reads the configuration file at path, or .nextkit.yaml in dir when
// path is empty, and applies the environment on top of the defaults
func Load(path string, dir string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(dir)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, "", errdef.Wrap(errdef.CodeConfig, err, "reading configuration")
		}
	}

	cfg := &Config{}
	err = v.Unmarshal(cfg)
	if err != nil {
		return nil, "", errdef.Wrap(errdef.CodeConfig, err, "parsing configuration")
	}

	used := v.ConfigFileUsed()
	if used != "" {
		err = readCaseSensitive(used, cfg)
		if err != nil {
			return nil, "", err
		}
	}

	err = cfg.Validate()
	if err != nil {
		return nil, "", err
	}

	return cfg, used, nil
}

// viper folds map keys to lower case, script names and post globs keep theirs
func readCaseSensitive(file string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "reading configuration")
	}

	var raw struct {
		Scripts map[string]string `yaml:"scripts"`
		Post    map[string]string `yaml:"post"`
	}

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "parsing configuration")
	}

	if raw.Scripts != nil {
		cfg.Scripts = raw.Scripts
	}
	if raw.Post != nil {
		cfg.Post = raw.Post
	}

	return nil
}

// Validate checks enumerations and required values
func (c *Config) Validate() error {
	var errs []error

	check := func(name string, val string, valid ...string) {
		for _, v := range valid {
			if val == v {
				return
			}
		}
		errs = append(errs, fmt.Errorf("invalid %s %q, valid values are %s", name, val, strings.Join(valid, ", ")))
	}

	check("package_manager", c.PackageManager, NPM, PNPM, Yarn, Bun)
	check("test_runner", c.TestRunner, TestRunnerNone, TestRunnerJest, TestRunnerVitest)
	check("workflows", c.Workflows, WorkflowsAsk, WorkflowsAlways, WorkflowsNever)
	check("engine", c.Engine, EngineGo, EngineJet)

	if strings.TrimSpace(c.Generator.Command) == "" {
		errs = append(errs, fmt.Errorf("generator.command is required"))
	}
	if c.SourceDirectory == "" {
		errs = append(errs, fmt.Errorf("source_directory is required"))
	}
	if c.PlaceholderFeature == "" {
		errs = append(errs, fmt.Errorf("placeholder_feature is required"))
	}
	if c.Engine == EngineJet && c.TemplatesDirectory == "" {
		errs = append(errs, fmt.Errorf("the jet engine requires templates_directory"))
	}
	if c.TemplatesDirectory != "" {
		_, err := os.Stat(c.TemplatesDirectory)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot read templates directory: %w", err))
		}
	}

	if len(errs) > 0 {
		return errdef.Wrap(errdef.CodeConfig, errors.Join(errs...), "invalid configuration")
	}

	return nil
}

// HasTests reports whether a test runner is configured
func (c *Config) HasTests() bool {
	return c.TestRunner != "" && c.TestRunner != TestRunnerNone
}

// ProjectDirectories lists the directories created below the source directory
func (c *Config) ProjectDirectories() []string {
	dirs := append([]string{}, c.BaseDirectories...)
	if c.HasTests() {
		dirs = append(dirs, c.TestDirectories...)
	}

	return dirs
}

// GeneratorCommand is the generator invocation creating project name
func (c *Config) GeneratorCommand(name string) (runner.Command, error) {
	g := c.Generator

	args := []string{name}
	args = append(args, flag(g.TypeScript, "--ts", "--js"))
	args = append(args, flag(g.ESLint, "--eslint", "--no-eslint"))
	args = append(args, flag(g.Tailwind, "--tailwind", "--no-tailwind"))
	args = append(args, flag(g.AppRouter, "--app", "--no-app"))
	args = append(args, flag(g.SrcDir, "--src-dir", "--no-src-dir"))
	if g.ImportAlias != "" {
		args = append(args, "--import-alias", g.ImportAlias)
	}
	args = append(args, "--use-"+c.PackageManager)
	args = append(args, g.ExtraArgs...)

	return runner.Parse(g.Command, args...)
}

// DevPackages lists the development dependencies the configured tooling needs
func (c *Config) DevPackages() []string {
	var pkgs []string

	if c.Prettier {
		pkgs = append(pkgs, "prettier")
		if c.Generator.Tailwind {
			pkgs = append(pkgs, "prettier-plugin-tailwindcss")
		}
	}

	switch c.TestRunner {
	case TestRunnerJest:
		pkgs = append(pkgs, "jest", "jest-environment-jsdom", "@testing-library/react", "@testing-library/dom", "@testing-library/jest-dom", "@types/jest", "ts-node")
	case TestRunnerVitest:
		pkgs = append(pkgs, "vitest", "@vitejs/plugin-react", "jsdom", "@testing-library/react", "@testing-library/dom", "vite-tsconfig-paths")
	}

	return pkgs
}

// InstallCommand adds pkgs as development dependencies using the package manager
func (c *Config) InstallCommand(dir string, pkgs ...string) runner.Command {
	var args []string

	switch c.PackageManager {
	case PNPM:
		args = []string{"add", "-D"}
	case Yarn:
		args = []string{"add", "--dev"}
	case Bun:
		args = []string{"add", "--dev"}
	default:
		args = []string{"install", "--save-dev"}
	}

	return runner.Command{Name: c.PackageManager, Args: append(args, pkgs...), Dir: dir}
}

// ScriptEntries are the package.json scripts owned by this configuration
func (c *Config) ScriptEntries() map[string]string {
	scripts := map[string]string{}

	if c.Prettier {
		scripts["format"] = "prettier --write ."
		scripts["format:check"] = "prettier --check ."
	}

	switch c.TestRunner {
	case TestRunnerJest:
		scripts["test"] = "jest"
		scripts["test:watch"] = "jest --watch"
	case TestRunnerVitest:
		scripts["test"] = "vitest run"
		scripts["test:watch"] = "vitest"
	}

	for k, v := range c.Scripts {
		scripts[k] = v
	}

	return scripts
}

// PostSteps are the configured post processing steps in a stable order
func (c *Config) PostSteps() []map[string]string {
	globs := make([]string, 0, len(c.Post))
	for g := range c.Post {
		globs = append(globs, g)
	}
	sort.Strings(globs)

	var res []map[string]string
	for _, g := range globs {
		res = append(res, map[string]string{g: c.Post[g]})
	}

	return res
}

// AliasPath maps a path below the source directory to an import using the
// configured alias, ./path relative imports are used when no alias is set
func (c *Config) AliasPath(rel string) string {
	alias := strings.TrimSuffix(c.Generator.ImportAlias, "*")
	if alias == "" {
		return "./" + filepath.ToSlash(rel)
	}

	return alias + filepath.ToSlash(rel)
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func flag(on bool, yes string, no string) string {
	if on {
		return yes
	}
	return no
}
