// Package logging builds the zerolog logger used across CSI Monitor
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"csi-monitor/internal/config"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger for cfg and the closer for its output. The terminal
// owns the screen while plotting, so logs normally go to a file; "-" selects
// stderr and an empty path disables logging.
func New(cfg config.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	switch cfg.File {
	case "":
		return zerolog.Nop(), nopCloser{}, nil
	case "-":
		return newLogger(os.Stderr, false, level), nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}
	return newLogger(f, true, level), f, nil
}

func newLogger(out io.Writer, noColor bool, level zerolog.Level) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: noColor}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
