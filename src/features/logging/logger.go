package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/autoimport/src/features/config"
)

// SetupLogger builds the application logger from the logger section of the config.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Get().Logger.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	level := log.InfoLevel
	switch cfg.Get().Logger.Level {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	var out io.Writer = os.Stderr
	if !cfg.Get().Logger.Enabled {
		out = io.Discard
	}

	handler := log.NewWithOptions(out, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "AutoImport",
		Formatter:       formatter,
		Level:           level,
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "time", time.Now().Format(time.RFC3339))
	return logger
}
