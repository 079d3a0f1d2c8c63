// Package logging configures ghn's structured logger.
//
// The TUI owns the terminal, so logs never go to stdout/stderr while it
// runs: they are written as JSON lines to a file, or discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	// Debug enables logging to the default log file at debug level.
	Debug bool

	// File overrides the log file path. Setting it enables logging.
	File string

	// Level is one of trace, debug, info, warn, error. Ignored when Debug
	// is set.
	Level string

	// Console writes human-readable logs to stderr instead of a file.
	// Used by the non-interactive subcommands.
	Console bool
}

// Setup builds a logger from opts. The returned closer releases the log
// file and is never nil.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorFieldName = "err"

	level := ParseLevel(opts.Level, zerolog.InfoLevel)
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	if opts.Console {
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(cw).Level(level).With().Timestamp().Logger(), nopCloser{}, nil
	}

	path := opts.File
	if path == "" && opts.Debug {
		dir, err := DefaultDir()
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		path = filepath.Join(dir, "ghn.log")
	}
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(f).Level(level).With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
	return logger, f, nil
}

// ParseLevel maps a level name to a zerolog level, returning def for
// unknown or empty names.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

// DefaultDir returns the OS-specific log directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", "ghn"), nil
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "ghn", "logs"), nil
	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
		return filepath.Join(stateHome, "ghn"), nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
