// Package logging builds the structured loggers used across the tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"charm.land/log/v2"
)

// New returns a logger writing to stderr at the given level name.
func New(level string) (*log.Logger, error) {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           lvl,
	})
	return logger, nil
}

// Discard returns a logger that drops everything, for tests and library
// callers that do not configure logging.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
