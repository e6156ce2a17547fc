// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Output is the writer console logs go to (default: os.Stderr).
	Output io.Writer

	// FilePath, when set, additionally appends every log line to a
	// persistent file with timestamps and without color codes.
	FilePath string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger: a console writer with
// colored severity prefixes, optionally teed into a log file. The
// returned closer is nil when no file is involved.
func Setup(cfg Config) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	console := zerolog.ConsoleWriter{Out: cfg.Output}

	var writer io.Writer = console
	var closer io.Closer

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("open log file %s: %w", cfg.FilePath, err)
		}
		fileWriter := zerolog.ConsoleWriter{Out: f, NoColor: true}
		writer = zerolog.MultiLevelWriter(console, fileWriter)
		closer = f
	}

	logger := zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = logger

	return logger, closer, nil
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
