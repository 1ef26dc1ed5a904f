package logger

import (
	"io"
	"log/slog"
	"strings"

	"skytycoon/internal/config"
)

// Init installs the default slog logger: JSON in production, text elsewhere.
func Init(cfg config.LoggingConfig, environment string, w io.Writer) {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))

	logger := slog.With("component", "logger")
	logger.Debug("Logger initialized",
		"level", level.String(),
		"json_format", cfg.JSONFormat,
		"environment", environment,
	)
}

// ParseLevel maps a level name to a slog level; unknown names give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
