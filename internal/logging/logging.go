// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alanyoungcy/quiverx/internal/config"
)

// ParseLevel maps a config level name onto slog. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to stdout and, when cfg.File is set, to a
// rotated file as well. The returned closer flushes the file sink.
func New(cfg config.LogConfig, level string) (*slog.Logger, func() error) {
	return NewWithWriter(os.Stdout, cfg, level)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(console io.Writer, cfg config.LogConfig, level string) (*slog.Logger, func() error) {
	writer := console
	closer := func() error { return nil }

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			file := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
			writer = io.MultiWriter(console, file)
			closer = file.Close
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(writer, opts)
	} else {
		h = slog.NewJSONHandler(writer, opts)
	}
	return slog.New(h), closer
}
