// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package errdef classifies the fatal conditions a scaffolding run can end with.
// Every coded error is reported by the command line as a single line and maps
// to exit code 1.
package errdef

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeMissingArgument    Code = "missing_argument"
	CodeInvalidName        Code = "invalid_name"
	CodeUnsupportedRuntime Code = "unsupported_runtime"
	CodeGeneratorFailure   Code = "generator_failure"
	CodeManifestParse      Code = "manifest_parse"
	CodeInstallFailure     Code = "install_failure"
	CodeTargetExists       Code = "target_exists"
	CodeFilesystem         Code = "filesystem"
	CodeConfig             Code = "config"
)

// Error is a coded error with an optional message and cause
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Message != "":
		return e.Message
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Wrap annotates err with code and an optional message, nil errors stay nil
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}

	return &Error{Code: ensureCode(code), Message: msg, Err: err}
}

// New creates a formatted error carrying code
func New(code Code, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return &Error{Code: ensureCode(code), Message: msg}
}

// CodeOf extracts the outermost code found in the chain of err
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return CodeUnknown
}

// Is reports whether err carries code anywhere in its chain
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}

	return false
}

func ensureCode(code Code) Code {
	if code == "" {
		return CodeUnknown
	}

	return code
}
