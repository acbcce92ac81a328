// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package prompt asks the user questions on the controlling terminal.
//
// When standard input or output is not a terminal no question is asked: Ask
// returns an empty answer and Confirm returns its default, so unattended runs
// behave as if the user pressed enter on every prompt.
package prompt

//go:generate mockgen -source prompt.go -destination mock_test.go -package prompt -typed

import (
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/nextkit/scaffold/internal/validator"
	terminal "golang.org/x/term"
)

// Question is a free form question
type Question struct {
	Message string
	Help    string
	Default string
	// Validation is an expression the answer has to satisfy, see the validator package
	Validation string
}

// Prompter asks questions, implementations must be safe to call without a terminal
type Prompter interface {
	Ask(q Question) (string, error)
	Confirm(message string, dflt bool) (bool, error)
}

// surveyor abstracts the survey library for testability.
type surveyor interface {
	AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error
}

type defaultSurveyor struct{}

func (d *defaultSurveyor) AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// Option configures a Survey prompter
type Option func(*Survey)

// WithAssumeYes answers every confirmation affirmatively without asking
func WithAssumeYes(yes bool) Option {
	return func(s *Survey) {
		s.assumeYes = yes
	}
}

// WithOutput sets where notices are written, os.Stdout by default
func WithOutput(w io.Writer) Option {
	return func(s *Survey) {
		s.output = w
	}
}

func withSurveyor(sv surveyor) Option {
	return func(s *Survey) {
		s.surveyor = sv
	}
}

func withIsTerminal(f func() bool) Option {
	return func(s *Survey) {
		s.isTerminal = f
	}
}

// Survey is a Prompter using interactive terminal prompts
type Survey struct {
	surveyor   surveyor
	isTerminal func() bool
	output     io.Writer
	assumeYes  bool
}

// New creates a terminal prompter
func New(opts ...Option) *Survey {
	s := &Survey{
		surveyor:   &defaultSurveyor{},
		isTerminal: isTerminal,
		output:     os.Stdout,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Survey) Ask(q Question) (string, error) {
	if !s.isTerminal() {
		return "", nil
	}

	var opts []survey.AskOpt
	if q.Validation != "" {
		opts = append(opts, survey.WithValidator(validator.SurveyValidator(q.Validation, false)))
	}

	var ans string
	err := s.surveyor.AskOne(&survey.Input{
		Message: q.Message,
		Help:    q.Help,
		Default: q.Default,
	}, &ans, opts...)
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (s *Survey) Confirm(message string, dflt bool) (bool, error) {
	if s.assumeYes {
		fmt.Fprintf(s.output, "%s %s\n", message, ColorMarkup("{green}yes{/green}"))
		return true, nil
	}

	if !s.isTerminal() {
		return dflt, nil
	}

	ans := dflt
	err := s.surveyor.AskOne(&survey.Confirm{
		Message: message,
		Default: dflt,
	}, &ans)
	if err != nil {
		return false, err
	}

	return ans, nil
}

func isTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd())) && terminal.IsTerminal(int(os.Stdout.Fd()))
}
