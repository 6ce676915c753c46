package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/chainguard-dev/clog"
)

// parseLevel maps a config log level to slog. Unknown values mean info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// withLogger returns ctx carrying a clog logger that writes text records to w.
// verbose forces debug level.
func withLogger(ctx context.Context, w io.Writer, level string, verbose bool) context.Context {
	lvl := parseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	logger := clog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return clog.WithLogger(ctx, logger)
}
