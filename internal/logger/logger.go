// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level string
	// Console selects the human-readable writer instead of JSON lines.
	Console bool
	// Out defaults to stdout.
	Out io.Writer
}

// Setup builds a logger from cfg, installs it as log.Logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
	}

	zl := zerolog.New(out).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Str("service", "kanso-goals").
		Logger()

	log.Logger = zl
	return zl
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// return def.
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
	case "disabled", "off":
		return zerolog.Disabled
	}
	return def
}

// GinWriter adapts the logger for gin's debug output.
type GinWriter struct {
	Logger zerolog.Logger
}

func (w GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.Logger.Debug().Str("component", "gin").Msg(msg)
	}
	return len(p), nil
}
