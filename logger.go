package mixgo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/mixer"
)

// Logger wraps slog.Logger with mixgo-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
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

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewFormatLogger creates a text or JSON logger writing to w.
func NewFormatLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return NewLogger(slog.NewJSONHandler(w, opts))
	}
	return NewLogger(slog.NewTextHandler(w, opts))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithRun adds the run id field.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", id),
	}
}

// WithStrategy adds the strategy field.
func (l *Logger) WithStrategy(s mixer.Strategy) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", s.String()),
	}
}

// LogStage logs a fetch or publish step.
func (l *Logger) LogStage(ctx context.Context, op string, files int, bytes int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"files", files,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, op+" completed",
		"files", files,
		"bytes", bytes,
		"elapsed", elapsed,
	)
}

// LogMerge logs a partition merge.
func (l *Logger) LogMerge(ctx context.Context, in, out string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"input", in,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "merge completed",
		"input", in,
		"output", out,
	)
}

// LogIngest logs the ingestion result.
func (l *Logger) LogIngest(ctx context.Context, ds *ingest.Dataset, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ingest failed",
			"error", err,
		)
		return
	}
	if ds.Stats.Misaligned {
		l.WarnContext(ctx, "candidate and collision streams differ in length",
			"rows", ds.Stats.Rows,
		)
	}
	l.InfoContext(ctx, "dataset ready",
		"primaries", len(ds.Primaries),
		"hadrons", len(ds.Hadrons),
		"collisions", len(ds.Collisions),
		"rejected", ds.Stats.Rejected,
		"elapsed", elapsed,
	)
}

// LogMix logs the mixing result.
func (l *Logger) LogMix(ctx context.Context, stats mixer.Stats, depth int, seed int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mixing failed",
			"depth", depth,
			"seed", seed,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "mixing completed",
		"depth", depth,
		"seed", seed,
		"primaries", stats.Primaries,
		"pairs", stats.Pairs,
		"capped", stats.CappedPairings,
		"elapsed", stats.Elapsed,
	)
}
