// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package logger provides a thin wrapper around zerolog.Logger used
// throughout bibsync. The Logger type embeds zerolog.Logger, so the full
// zerolog API (Debug, Info, Warn, Error, Fatal, ...) is available directly;
// sync components receive a *Logger and derive per-library child loggers
// from it.
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger. Embedding exposes the
// zerolog API while letting the application add helpers without touching
// the upstream type.
type Logger struct {
	zerolog.Logger
}

// New constructs a *Logger for the given role label (e.g. "sync",
// "uploader"). Entries are written to w as JSON with a timestamp, the role
// field, and the fully-qualified caller function name in "func".
func New(role string, w io.Writer) *Logger {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	l := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// NewFileLogger constructs a *Logger that appends to a "logs" file next to
// the executable, falling back to stdout when the file cannot be opened.
// Intended for the client binary, whose stdout may be a terminal.
func NewFileLogger(role string) *Logger {
	execPath, _ := os.Executable()
	logPath := filepath.Join(filepath.Dir(execPath), "logs")
	out, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return New(role, os.Stdout)
	}
	return New(role, out)
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithLibrary returns a child logger tagged with the library identifier,
// so all entries of one library's sync pass can be filtered together.
func (l *Logger) WithLibrary(library string) *Logger {
	return &Logger{l.With().Str("library", library).Logger()}
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's
// WithContext helper. If none is attached zerolog returns its global
// logger, so this never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
