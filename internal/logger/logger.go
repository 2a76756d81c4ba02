package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/rs/zerolog"
)

func SetupLogger(cfg *config.LoggingConfig, component string) zerolog.Logger {
	return newLogger(cfg, component, zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	})
}

func newLogger(cfg *config.LoggingConfig, component string, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Caller().
		Str("service", "podvis").
		Str("component", component).
		Str("host", hostname).
		Logger()
}
