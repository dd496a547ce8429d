package ssg

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// NewLogger returns a terminal logger. Verbose enables debug output with
// timestamps.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		Prefix:          "ssg",
	}))
}
