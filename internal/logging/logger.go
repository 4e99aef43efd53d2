package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/config"
)

// NewLogger creates a structured zerolog.Logger tagged with the service name
// from the config.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg.ServiceName, cfg.LogLevel)
}

// NewCLILogger writes human-readable logs to stderr for command line tools.
// Only warnings and above are shown unless level says otherwise.
func NewCLILogger(level string) zerolog.Logger {
	if level == "" {
		level = "warn"
	}
	return newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, "", level)
}

func newLogger(w io.Writer, service, logLevel string) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if service != "" {
		ctx = ctx.Str("service", service)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || logLevel == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
