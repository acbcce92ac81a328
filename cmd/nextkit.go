// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/choria-io/fisk"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nextkit/scaffold/internal/config"
	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/logging"
	"github.com/nextkit/scaffold/internal/pipeline"
	"github.com/nextkit/scaffold/internal/prompt"
	"github.com/nextkit/scaffold/internal/resolver"
	"github.com/nextkit/scaffold/internal/runner"
)

var (
	ctx              context.Context
	args             []string
	configFile       string
	assumeYes        bool
	dryRun           bool
	debug            bool
	skipInstall      bool
	skipRuntimeCheck bool
	keepFiles        bool
	showConfig       bool
	packageManager   string
	workflows        string
	testRunner       string
	templates        string
	engineString     string
	post             map[string]string
	version          string
)

func main() {
	post = map[string]string{}

	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := fisk.New("nextkit", "Scaffolds Next.js projects and features")
	app.Version(version)

	app.Help = `
Creates a new Next.js project using create-next-app and arranges it into a
feature oriented layout, or adds a feature to the project in the current
directory.

  nextkit my-app          creates the my-app project
  nextkit feature auth    adds src/features/auth to the current project

Settings are read from .nextkit.yaml in the current directory and NEXTKIT_
environment variables, flags take precedence.
`
	app.Arg("args", "The project name, or feature followed by the feature name").StringsVar(&args)
	app.Flag("config", "Configuration file to use instead of .nextkit.yaml").PlaceHolder("FILE").ExistingFileVar(&configFile)
	app.Flag("yes", "Answer yes to all confirmations").Short('y').BoolVar(&assumeYes)
	app.Flag("dry-run", "Show the changes adding a feature would make").BoolVar(&dryRun)
	app.Flag("debug", "Enables debug logging").BoolVar(&debug)
	app.Flag("skip-install", "Do not install development dependencies").BoolVar(&skipInstall)
	app.Flag("skip-runtime-check", "Do not verify the Node.js version").BoolVar(&skipRuntimeCheck)
	app.Flag("keep-files", "Place .gitkeep files in empty directories").BoolVar(&keepFiles)
	app.Flag("package-manager", "The package manager to use").EnumVar(&packageManager, config.NPM, config.PNPM, config.Yarn, config.Bun)
	app.Flag("workflows", "Whether to add GitHub Actions workflows").EnumVar(&workflows, config.WorkflowsAsk, config.WorkflowsAlways, config.WorkflowsNever)
	app.Flag("test-runner", "The test runner to configure").EnumVar(&testRunner, config.TestRunnerNone, config.TestRunnerJest, config.TestRunnerVitest)
	app.Flag("templates", "Directory holding project and feature templates").PlaceHolder("DIR").ExistingDirVar(&templates)
	app.Flag("engine", "The template engine used for custom templates (jet, go)").EnumVar(&engineString, config.EngineJet, config.EngineGo)
	app.Flag("post", "Post processing steps for rendered files").PlaceHolder("PATTERN=TOOL").StringMapVar(&post)
	app.Flag("show-config", "Shows the effective configuration").BoolVar(&showConfig)
	app.Action(runAction)

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		prefix := "nextkit:"
		if code := errdef.CodeOf(err); code != errdef.CodeUnknown {
			prefix = fmt.Sprintf("nextkit: %s:", code)
		}

		fmt.Fprintf(os.Stderr, "%s %v\n", text.FgRed.Sprint(prefix), err)
		cancel()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if assumeYes {
		cfg.AssumeYes = true
	}
	if skipInstall {
		cfg.SkipInstall = true
	}
	if skipRuntimeCheck {
		cfg.SkipRuntimeCheck = true
	}
	if keepFiles {
		cfg.KeepFiles = true
	}
	if packageManager != "" {
		cfg.PackageManager = packageManager
	}
	if workflows != "" {
		cfg.Workflows = workflows
	}
	if testRunner != "" {
		cfg.TestRunner = testRunner
	}
	if templates != "" {
		cfg.TemplatesDirectory = templates
	}
	if engineString != "" {
		cfg.Engine = engineString
	}
	if len(post) > 0 && cfg.Post == nil {
		cfg.Post = map[string]string{}
	}
	for k, v := range post {
		cfg.Post[k] = v
	}
}

func runAction(_ *fisk.ParseContext) error {
	log := logging.New(os.Stderr, debug)

	wd, err := os.Getwd()
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "cannot determine the working directory")
	}

	cfg, used, err := config.Load(configFile, wd)
	if err != nil {
		return err
	}
	if used != "" {
		log.Debugf("Loaded configuration from %s", used)
	}

	applyFlags(cfg)

	err = cfg.Validate()
	if err != nil {
		return err
	}

	if showConfig {
		out, err := cfg.YAML()
		if err != nil {
			return errdef.Wrap(errdef.CodeConfig, err, "rendering configuration")
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	prompter := prompt.New(prompt.WithAssumeYes(cfg.AssumeYes))

	inv, err := resolver.Resolve(args, prompter, resolver.NameRules{
		Project: cfg.ProjectNamePolicy,
		Feature: cfg.FeatureNamePolicy,
	})
	if err != nil {
		return err
	}

	if dryRun && inv.Mode != resolver.ModeFeature {
		return errdef.New(errdef.CodeConfig, "--dry-run is only supported when adding features")
	}

	log.Debugf("Scaffolding %s %s in %s", inv.Mode, inv.Name, wd)

	st := pipeline.NewState(inv, cfg, wd)
	st.DryRun = dryRun

	p := pipeline.For(inv.Mode, pipeline.Deps{
		Runner:   runner.NewExec(),
		Prompter: prompter,
		Log:      log,
	})

	return p.Run(ctx, st)
}
