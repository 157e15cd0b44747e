// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package logging configures the single zerolog logger this module's
// packages share, the way the teacher configures one logger at
// process start rather than letting each package build its own.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a zerolog.Logger writing to w (os.Stderr by default at
// the CLI's entrypoint). verbose enables debug-level output and a
// human-readable console writer; otherwise the logger emits compact
// structured JSON suited to piping into a log aggregator.
func New(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
