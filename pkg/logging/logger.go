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

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
//
// Output defaults to stderr: stdout belongs to the MCP transport and must
// never carry log lines.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	return logger
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

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Individual API requests (method, endpoint, status, duration)
//   - Page fetches during auto-pagination
//   - Tool argument decoding
//
// Info: Normal operation events
//   - Server startup/shutdown
//   - Batch write summaries (chunks, created, failed)
//
// Warn: Warning conditions that don't prevent operation
//   - API errors surfaced to the caller (4xx/5xx)
//   - Partial batch failures
//   - Unknown tool names
//
// Error: Error conditions requiring attention
//   - Transport failures (timeout, connection refused)
//   - Malformed JSON-RPC frames
//   - Configuration errors
//
// Context Fields:
//   - endpoint: Testmo endpoint path (ids normalized out)
//   - status_code: HTTP status code
//   - duration: Request duration
//   - error_class: Error classification (client, server, rate_limit, network, validation)
//   - tool: MCP tool name
//   - page: Page number during pagination
//   - chunk: Chunk index during batch writes
