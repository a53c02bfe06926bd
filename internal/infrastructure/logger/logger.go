package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	reqctx "3tcapital/ms_numeracion_core/internal/infrastructure/context"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// colorWriter wraps an io.Writer and adds color codes around the level string.
type colorWriter struct {
	writer  io.Writer
	enabled bool
}

func (cw *colorWriter) Write(p []byte) (n int, err error) {
	if !cw.enabled {
		return cw.writer.Write(p)
	}

	// slog.TextHandler format: "level=INFO"
	text := string(p)
	text = strings.ReplaceAll(text, "level=DEBUG", colorCyan+"level=DEBUG"+colorReset)
	text = strings.ReplaceAll(text, "level=INFO", colorGreen+"level=INFO"+colorReset)
	text = strings.ReplaceAll(text, "level=WARN", colorYellow+"level=WARN"+colorReset)
	text = strings.ReplaceAll(text, "level=ERROR", colorRed+"level=ERROR"+colorReset)

	_, err = cw.writer.Write([]byte(text))
	return len(p), err
}

// isTerminal checks if the writer is a terminal (TTY).
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

// New builds a structured slog logger writing to stdout.
// For development environments (local, dev, development), it uses colored text output.
// For every other environment it uses JSON output.
func New(appName, level, environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, appName, level, environment)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, appName, level, environment string) *slog.Logger {
	env := strings.ToLower(strings.TrimSpace(environment))
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler
	if isDevelopment(env) {
		handler = slog.NewTextHandler(&colorWriter{writer: w, enabled: isTerminal(w)}, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("app", appName)
}

// WithCorrelation returns log annotated with the request's correlation id, if any.
func WithCorrelation(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id := reqctx.GetCorrelationID(ctx); id != "" {
		return log.With("correlation_id", id)
	}
	return log
}

func isDevelopment(env string) bool {
	return env == "local" || env == "dev" || env == "development"
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
