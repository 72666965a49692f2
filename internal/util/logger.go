// internal/util/logger.go
package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger *zerolog.Logger

// InitLogger initializes the global structured logger.
// JSON lines on stdout by default; pretty switches to the console writer for local development.
func InitLogger(level string, pretty bool) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	logger = &l
	return logger
}

// GetLogger returns the initialized global logger.
func GetLogger() *zerolog.Logger {
	if logger == nil {
		InitLogger("info", false) // should be called explicitly at app start
	}
	return logger
}

// NopLogger returns a disabled logger for tests.
func NopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
