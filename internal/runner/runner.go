// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package runner abstracts starting external processes so scaffolding steps
// can be exercised without touching the network or a real toolchain.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrNotFound is returned when the executable cannot be located
var ErrNotFound = errors.New("executable not found")

// Command describes a single process invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory, the current directory when empty
	Dir string
	// Env is appended to the current process environment
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line in a form that can be pasted into a shell
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// ExitStatus is the outcome of a process that was started
type ExitStatus struct {
	Code int
}

// Success reports whether the process exited with code 0
func (e ExitStatus) Success() bool {
	return e.Code == 0
}

// CommandRunner starts processes and waits for them. A non-zero exit is not an
// error, errors indicate the process could not be run at all.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (ExitStatus, error)
}

// Parse splits a shell style command line into a Command
func Parse(line string, args ...string) (Command, error) {
	parts, err := shellquote.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("invalid command %q: %w", line, err)
	}
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	return Command{Name: parts[0], Args: append(parts[1:], args...)}, nil
}

// Exec runs commands as real child processes, output not redirected by the
// Command is streamed to Stdout and Stderr unfiltered
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec creates a runner attached to the process standard streams
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *Exec) Run(ctx context.Context, c Command) (ExitStatus, error) {
	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return ExitStatus{Code: -1}, fmt.Errorf("%s: %w", c.Name, ErrNotFound)
	}

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	cmd.Stdin = firstReader(c.Stdin, e.Stdin)
	cmd.Stdout = firstWriter(c.Stdout, e.Stdout)
	cmd.Stderr = firstWriter(c.Stderr, e.Stderr)

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ExitStatus{Code: exitErr.ExitCode()}, nil
		}

		return ExitStatus{Code: -1}, fmt.Errorf("running %s: %w", c.Name, err)
	}

	return ExitStatus{}, nil
}

// Output runs cmd capturing stdout, a non-zero exit is returned as an error
func Output(ctx context.Context, r CommandRunner, cmd Command) (string, error) {
	var out strings.Builder
	cmd.Stdout = &out
	if cmd.Stderr == nil {
		cmd.Stderr = io.Discard
	}

	status, err := r.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !status.Success() {
		return "", fmt.Errorf("%s exited with code %d", cmd, status.Code)
	}

	return strings.TrimSpace(out.String()), nil
}

func firstReader(r ...io.Reader) io.Reader {
	for _, v := range r {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstWriter(w ...io.Writer) io.Writer {
	for _, v := range w {
		if v != nil {
			return v
		}
	}
	return nil
}
