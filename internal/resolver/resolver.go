// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns the positional command line arguments into an
// invocation, asking for a project name when none was given.
package resolver

import (
	"strings"

	"github.com/nextkit/scaffold/internal/errdef"
	"github.com/nextkit/scaffold/internal/prompt"
	"github.com/nextkit/scaffold/internal/validator"
)

// FeatureWord selects feature mode when given as the first argument
const FeatureWord = "feature"

// Mode is what kind of scaffold is created
type Mode int

const (
	ModeProject Mode = iota
	ModeFeature
)

func (m Mode) String() string {
	switch m {
	case ModeProject:
		return "project"
	case ModeFeature:
		return "feature"
	default:
		return "unknown"
	}
}

// Invocation is a resolved request
type Invocation struct {
	Mode Mode
	Name string
}

// NameRules are validator expressions names have to satisfy, empty rules accept any name
type NameRules struct {
	Project string
	Feature string
}

// Resolve determines the mode and name from argv, which excludes the program
// name. Nothing on disk is touched.
func Resolve(argv []string, p prompt.Prompter, rules NameRules) (Invocation, error) {
	if len(argv) > 0 && argv[0] == FeatureWord {
		if len(argv) < 2 || strings.TrimSpace(argv[1]) == "" {
			return Invocation{}, errdef.New(errdef.CodeMissingArgument, "a feature name is required: %s <name>", FeatureWord)
		}

		inv := Invocation{Mode: ModeFeature, Name: strings.TrimSpace(argv[1])}

		return inv, check(inv.Name, rules.Feature, "feature")
	}

	var name string
	if len(argv) > 0 {
		name = strings.TrimSpace(argv[0])
	}

	if name == "" {
		if p == nil {
			return Invocation{}, errdef.New(errdef.CodeMissingArgument, "a project name is required")
		}

		ans, err := p.Ask(prompt.Question{
			Message:    "What is your project named?",
			Help:       "The directory to create, also used as the package name",
			Validation: rules.Project,
		})
		if err != nil {
			return Invocation{}, errdef.Wrap(errdef.CodeMissingArgument, err, "could not read the project name")
		}

		name = strings.TrimSpace(ans)
		if name == "" {
			return Invocation{}, errdef.New(errdef.CodeMissingArgument, "a project name is required")
		}
	}

	inv := Invocation{Mode: ModeProject, Name: name}

	return inv, check(name, rules.Project, "project")
}

func check(name string, expression string, kind string) error {
	if !validator.IsPathSafe(name) {
		return errdef.New(errdef.CodeInvalidName, "invalid %s name %q: must be a single path element", kind, name)
	}

	if expression == "" {
		return nil
	}

	ok, err := validator.ValidateValue(name, expression)
	if err != nil {
		return errdef.Wrap(errdef.CodeInvalidName, err, "could not validate %s name %q", kind, name)
	}
	if !ok {
		return errdef.New(errdef.CodeInvalidName, "invalid %s name %q", kind, name)
	}

	return nil
}
