// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// levelNames maps accepted level spellings to zerolog levels. Unknown
// spellings fall back to info.
var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr when nil.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup configures the global zerolog logger and returns it. Log sites pull
// component loggers off the global via NewLogger.
func Setup(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := levelNames[strings.ToLower(string(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-attempt fetch flow (auth mode advances, snapshot sizes)
//   - Rate limit waits and token accounting
//
// Info: Normal operation events
//   - Batch start/completion with progress
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Transient market errors entering backoff
//   - Rate limit waits cut short by cancellation
//
// Error: Error conditions requiring attention
//   - Fatal upstream errors and exhausted retries
//   - Configuration errors
//
// Context Fields:
//   - item_id: Market item id being fetched
//   - auth_mode: Credential placement convention in use
//   - cycle: Retry cycle number
//   - backoff: Backoff duration before the next cycle
//   - batch_id: Correlation id for one fetch batch
//   - tokens / waited: Rate limiter accounting
