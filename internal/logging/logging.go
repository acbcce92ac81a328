// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package logging adapts zerolog to the small printf style logger interfaces
// used across the scaffolder.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger logs printf style messages at a few levels
type Logger struct {
	log zerolog.Logger
}

// New creates a console logger writing to w, debug messages are only shown
// when debug is set
func New(w io.Writer, debug bool) *Logger {
	out := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = w
		cw.TimeFormat = time.TimeOnly
	})

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &Logger{log: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewJSON creates a logger emitting JSON lines, mainly used in tests
func NewJSON(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &Logger{log: zerolog.New(w).Level(level)}
}

// Discard creates a logger that drops everything
func Discard() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) Debugf(format string, a ...any) {
	l.log.Debug().Msg(fmt.Sprintf(format, a...))
}

func (l *Logger) Infof(format string, a ...any) {
	l.log.Info().Msg(fmt.Sprintf(format, a...))
}

func (l *Logger) Warnf(format string, a ...any) {
	l.log.Warn().Msg(fmt.Sprintf(format, a...))
}

func (l *Logger) Errorf(format string, a ...any) {
	l.log.Error().Msg(fmt.Sprintf(format, a...))
}
