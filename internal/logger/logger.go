// Package logger builds the zerolog loggers used across tvdenoise.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a structured logger writing to the given writer at the
// given level, with timestamps attached to every event.
func New(writer io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole creates a human-readable logger on stderr. Verbose mode
// lowers the level to debug so per-solve diagnostics are shown.
func NewConsole(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	return New(consoleWriter, level)
}
