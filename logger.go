package hugegraph

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/hugegraph/compute"
	"github.com/hupe1980/hugegraph/descriptor"
)

// Logger wraps slog.Logger with hugegraph-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

func loggerFromConfig(cfg Config) *Logger {
	level, err := cfg.level()
	if err != nil {
		level = slog.LevelInfo
	}
	if cfg.LogFormat == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// WithPipeline adds the pipeline's id and name to the logger.
func (l *Logger) WithPipeline(p *descriptor.PipelineDescriptor) *Logger {
	return &Logger{
		Logger: l.Logger.With("pipeline", p.Name, "pipeline_id", p.ID),
	}
}

// WithDescriptor adds a descriptor's kind, id and name to the logger.
func (l *Logger) WithDescriptor(kind string, id uint32, name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(kind, name, kind+"_id", id),
	}
}

// LogInstantiate logs the creation of a computer or storage runtime.
func (l *Logger) LogInstantiate(ctx context.Context, kind string, id uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "instantiate failed",
			"kind", kind,
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "instantiated",
			"kind", kind,
			"id", id,
		)
	}
}

// LogRun logs a finished computation run.
func (l *Logger) LogRun(ctx context.Context, d *descriptor.ComputationDescriptor, res compute.RunResult, err error) {
	if err != nil {
		l.ErrorContext(ctx, "computation failed",
			"computation", d.Name,
			"supersteps", res.Supersteps,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "computation completed",
			"computation", d.Name,
			"supersteps", res.Supersteps,
			"converged", res.Converged,
		)
	}
}

// LogFlush logs a storage flush.
func (l *Logger) LogFlush(ctx context.Context, d *descriptor.StorageDescriptor, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"storage", d.Name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"storage", d.Name,
		)
	}
}
