package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

var logger *slog.Logger

type Options struct {
	ServiceName string
	Environment string
	Level       string
	// Output is "", "stdout", "stderr" or a file path. Empty discards local
	// output so that stdout and stderr carry nothing but session results.
	Output string
}

// Init installs the process logger. The returned closer releases a log file
// opened for Output and must be called on shutdown.
func Init(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	w, closer, err := openOutput(opts.Output)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var local slog.Handler
	if opts.Environment == "development" {
		local = slog.NewTextHandler(w, handlerOpts)
	} else {
		local = slog.NewJSONHandler(w, handlerOpts)
	}

	// The OTel handler exports through the global logger provider set by the
	// telemetry provider; it is a no-op until one is installed.
	otelHandler := otelslog.NewHandler(opts.ServiceName, otelslog.WithLoggerProvider(global.GetLoggerProvider()))

	logger = slog.New(teeHandler{&levelHandler{level: level, Handler: otelHandler}, local}).With(
		slog.String("service", opts.ServiceName),
		slog.String("environment", opts.Environment),
	)
	slog.SetDefault(logger)

	return closer, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "":
		return io.Discard, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "stderr":
		return os.Stderr, nopCloser{}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	return f, f, nil
}

func current() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// traceAttrs correlates a record with the span active in ctx, if any.
func traceAttrs(ctx context.Context) []any {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []any{
		slog.String("traceId", sc.TraceID().String()),
		slog.String("spanId", sc.SpanID().String()),
	}
}

func logAt(ctx context.Context, level slog.Level, msg string, args []any) {
	l := current()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, append(args, traceAttrs(ctx)...)...)
}

func Debug(ctx context.Context, msg string, args ...any) { logAt(ctx, slog.LevelDebug, msg, args) }

func Info(ctx context.Context, msg string, args ...any) { logAt(ctx, slog.LevelInfo, msg, args) }

func Warn(ctx context.Context, msg string, args ...any) { logAt(ctx, slog.LevelWarn, msg, args) }

func Error(ctx context.Context, msg string, args ...any) { logAt(ctx, slog.LevelError, msg, args) }

// levelHandler applies the configured minimum level to the OTel handler,
// which has no level option of its own.
type levelHandler struct {
	level slog.Level
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}

// teeHandler hands every record to each enabled handler. A failing handler
// does not stop the others.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) derive(fn func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}
