package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"genbot-api/internal/config"
)

// New builds the service-wide zerolog.Logger. Production environments emit
// JSON lines; everywhere else a console writer keeps local output readable.
// An unknown LOG_LEVEL falls back to info and is flagged once at startup.
func New(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Environment != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level, known := parseLevel(cfg.LogLevel)

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	if !known {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, defaulting to info")
	}
	return logger
}

// parseLevel maps the LOG_LEVEL setting onto a zerolog level. The second
// return reports whether the input was recognized.
func parseLevel(raw string) (zerolog.Level, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return zerolog.InfoLevel, true
	}

	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return level, true
}
