// Package logging configures the zerolog logger shared by all pipeline stages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the minimum severity written by the pipeline.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Field names used across packages so log lines can be joined per run.
const (
	FieldRunID      = "run_id"
	FieldStage      = "stage"
	FieldComponent  = "component"
	FieldVideoID    = "video_id"
	FieldPlaylistID = "playlist_id"
	FieldResource   = "resource"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger returns a child of the global logger tagged with a component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str(FieldComponent, component).Logger()
}

// ForStage tags a logger with the run id and stage name.
func ForStage(logger zerolog.Logger, runID, stage string) zerolog.Logger {
	return logger.With().Str(FieldRunID, runID).Str(FieldStage, stage).Logger()
}

// Level guidelines:
//
// Debug: cache hits and revalidations, quota ledger reads, per-request flow.
// Info: stage start/finish, page and batch progress, files written.
// Warn: retries, skipped videos, failed charts, quota throttling.
// Error: a stage that failed after all retries, configuration problems.
