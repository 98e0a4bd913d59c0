package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/borncrazy123/CamLink/internal/infrastructure/config"
)

// Logger wraps a zerolog.Logger behind a key/value API.
//
// Methods take a message followed by alternating keys and values:
//
//	logger.Info("published command", "device_id", id, "request_id", corr)
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	zl zerolog.Logger
}

// New creates a new Logger with the specified configuration.
//
// JSON is written unless cfg.Format is "text", in which case zerolog's
// console writer is used without colour. Every entry carries the service
// name and version.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}
	return newWithWriter(output, cfg, version)
}

func newWithWriter(output io.Writer, cfg config.LoggingConfig, version string) *Logger {
	if strings.ToLower(cfg.Format) == "text" {
		output = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "camlink").
		Str("version", version).
		Logger()

	return &Logger{zl: zl}
}

// parseLevel converts a string log level to a zerolog.Level.
// Defaults to info if unrecognised.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	emit(l.zl.Debug(), msg, args)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	emit(l.zl.Info(), msg, args)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	emit(l.zl.Warn(), msg, args)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	emit(l.zl.Error(), msg, args)
}

func emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	if len(args) > 0 {
		ev = ev.Fields(normalise(args))
	}
	ev.Msg(msg)
}

// normalise pads a dangling key so zerolog never drops the last pair.
func normalise(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}
	out := make([]any, 0, len(args)+1)
	out = append(out, args...)
	return append(out, "(MISSING)")
}

// With returns a new Logger with additional default fields.
//
// Example:
//
//	mqttLogger := logger.With("component", "mqtt")
//	mqttLogger.Info("connected") // Includes component=mqtt
func (l *Logger) With(args ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(normalise(args)).Logger()}
}

// Default creates a default logger for use before configuration is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
