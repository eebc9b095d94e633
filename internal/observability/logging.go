// Package observability wires the process-wide slog handler, optionally
// bridging records into an OpenTelemetry log exporter.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const loggerName = "zoho-mcp"

// Instrument installs the default slog handler.
//
// format selects the local handler (text or json, written to stderr — stdout
// belongs to the MCP stdio transport). export optionally adds an OTel log
// pipeline: "otlp-http", "otlp-grpc" (both configured through the standard
// OTEL_EXPORTER_OTLP_* environment), "stdout", or empty for none.
//
// The returned shutdown function flushes the exporter pipeline; it is a
// no-op when no exporter is configured.
func Instrument(ctx context.Context, level slog.Level, format, export string) (func(context.Context) error, error) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	shutdown := func(context.Context) error { return nil }

	if export != "" {
		exporter, err := newExporter(ctx, export)
		if err != nil {
			return nil, fmt.Errorf("creating log exporter: %w", err)
		}

		provider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(
				minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), minSeverity(level)),
			),
		)
		shutdown = provider.Shutdown

		handler = fanout{
			handler,
			otelslog.NewHandler(loggerName, otelslog.WithLoggerProvider(provider)),
		}
	}

	slog.SetDefault(slog.New(handler))
	return shutdown, nil
}

func newExporter(ctx context.Context, export string) (sdklog.Exporter, error) {
	switch export {
	case "otlp-http":
		return otlploghttp.New(ctx)
	case "otlp-grpc":
		return otlploggrpc.New(ctx)
	case "stdout":
		// Exported records go to stderr for the same reason the slog handlers
		// do: stdout carries the MCP protocol stream.
		return stdoutlog.New(stdoutlog.WithWriter(os.Stderr))
	default:
		return nil, fmt.Errorf("unsupported log export: %s", export)
	}
}

func minSeverity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

// fanout replicates each record to every wrapped handler.
type fanout []slog.Handler

var _ slog.Handler = (fanout)(nil)

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
