// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"strings"
)

// Handler fakes the behaviour of one command for a Recorder
type Handler func(ctx context.Context, cmd Command) (ExitStatus, error)

// Recorder is a CommandRunner that records invocations instead of starting
// processes. Handlers are matched on the command name, unmatched commands
// succeed without output.
type Recorder struct {
	Invocations []Command
	handlers    map[string]Handler
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{handlers: map[string]Handler{}}
}

// Handle registers h for commands named name
func (r *Recorder) Handle(name string, h Handler) *Recorder {
	r.handlers[name] = h
	return r
}

// Respond registers a handler that writes stdout and exits with code
func (r *Recorder) Respond(name string, stdout string, code int) *Recorder {
	return r.Handle(name, func(_ context.Context, cmd Command) (ExitStatus, error) {
		if cmd.Stdout != nil && stdout != "" {
			fmt.Fprint(cmd.Stdout, stdout)
		}
		return ExitStatus{Code: code}, nil
	})
}

// Missing registers name as an executable that cannot be found
func (r *Recorder) Missing(name string) *Recorder {
	return r.Handle(name, func(_ context.Context, _ Command) (ExitStatus, error) {
		return ExitStatus{Code: -1}, fmt.Errorf("%s: %w", name, ErrNotFound)
	})
}

func (r *Recorder) Run(ctx context.Context, cmd Command) (ExitStatus, error) {
	r.Invocations = append(r.Invocations, cmd)

	h, ok := r.handlers[cmd.Name]
	if !ok {
		return ExitStatus{}, nil
	}

	return h(ctx, cmd)
}

// Lines returns every recorded invocation as a shell quoted command line
func (r *Recorder) Lines() []string {
	var res []string
	for _, c := range r.Invocations {
		res = append(res, c.String())
	}
	return res
}

// Named returns the recorded invocations of name
func (r *Recorder) Named(name string) []Command {
	var res []Command
	for _, c := range r.Invocations {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

// Contains reports whether any invocation line contains s
func (r *Recorder) Contains(s string) bool {
	for _, l := range r.Lines() {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}
