// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package validator evaluates boolean expressions against user supplied
// values, the value being checked is available as value.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/expr-lang/expr"
)

var (
	packageNamePattern = regexp.MustCompile(`^(?:@[a-z0-9-*~][a-z0-9-*._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)
	identPattern       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Validate compiles and runs expression against env, the expression must
// produce a boolean
func Validate(env map[string]any, expression string) (bool, error) {
	opts := []expr.Option{
		expr.Env(env),
		expr.AsBool(),
		expr.Function("isPackageName", stringFunc(IsPackageName), new(func(string) bool)),
		expr.Function("isIdentifier", stringFunc(identPattern.MatchString), new(func(string) bool)),
		expr.Function("isPathSafe", stringFunc(IsPathSafe), new(func(string) bool)),
	}

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return false, fmt.Errorf("invalid expression %q: %w", expression, err)
	}

	res, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	ok, valid := res.(bool)
	if !valid {
		return false, fmt.Errorf("expression %q did not return a boolean", expression)
	}

	return ok, nil
}

// ValidateValue runs expression with value bound to the value variable
func ValidateValue(value any, expression string) (bool, error) {
	return Validate(map[string]any{"value": value}, expression)
}

// SurveyValidator adapts expression to a survey validator, empty answers are
// only rejected when required is set
func SurveyValidator(expression string, required bool) survey.Validator {
	return func(ans any) error {
		s, ok := ans.(string)
		if ok && s == "" && !required {
			return nil
		}

		valid, err := ValidateValue(ans, expression)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("validation using %q did not pass", expression)
		}

		return nil
	}
}

// IsPackageName checks the npm package naming rules
func IsPackageName(name string) bool {
	if name == "" || len(name) > 214 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	if strings.TrimSpace(name) != name || strings.ToLower(name) != name {
		return false
	}

	return packageNamePattern.MatchString(name)
}

// IsPathSafe reports whether name can be used as a single directory name
func IsPathSafe(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

func stringFunc(f func(string) bool) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return false, fmt.Errorf("expected 1 argument")
		}

		s, ok := params[0].(string)
		if !ok {
			return false, nil
		}

		return f(s), nil
	}
}
