package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig configures the diagnostic logger
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// NewLogger creates a zerolog logger writing to out.
// An unknown level falls back to info.
func (lc LogConfig) NewLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}

	if lc.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
