package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects verbosity and encoding. Output always goes to stderr
// because stdout carries the JSON payload.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// New builds a logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	var out io.Writer = w
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	return zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// Retry adapts a zerolog.Logger to the leveled logger interface the HTTP
// retry client expects.
type Retry struct {
	Logger zerolog.Logger
}

func (r Retry) Error(msg string, keysAndValues ...interface{}) {
	r.Logger.Error().Fields(keysAndValues).Msg(msg)
}

func (r Retry) Info(msg string, keysAndValues ...interface{}) {
	r.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (r Retry) Debug(msg string, keysAndValues ...interface{}) {
	r.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (r Retry) Warn(msg string, keysAndValues ...interface{}) {
	r.Logger.Warn().Fields(keysAndValues).Msg(msg)
}
