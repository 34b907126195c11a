// Package log builds the process logger from configuration.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
)

// Component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentLedger     = "ledger"
	ComponentStatistics = "statistics"
	ComponentAccount    = "account"
	ComponentCategory   = "category"
	ComponentImport     = "import"
	ComponentBus        = "bus"
	ComponentAMQP       = "amqp"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	Level  string
	Format Format
	Output io.Writer
}

// New returns a logger writing to cfg.Output in the requested format.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	case FormatText, "":
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if s == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}

	return level, nil
}

// WithComponent tags every record of the returned logger with component.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(FieldComponent, component)
}

// Discard is a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
