// Package logging wraps zap behind the key/value call style used across
// matchfeed: logger.InfoContext(ctx, "batch committed", "fixtures", n).
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger is safe to use as a nil pointer; a nil Logger writes to Default().
type Logger struct {
	core   *zap.Logger
	synced *atomic.Bool
}

var fallback atomic.Pointer[Logger]

func init() {
	fallback.Store(NewNop())
}

func wrap(z *zap.Logger) *Logger {
	return &Logger{core: z, synced: new(atomic.Bool)}
}

// NewJSON logs JSON lines to stdout.
func NewJSON(level Level) *Logger {
	return NewJSONWriter(level, os.Stdout)
}

func NewJSONWriter(level Level, w io.Writer) *Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), level)
	return wrap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(LevelError)))
}

func NewNop() *Logger {
	return wrap(zap.NewNop())
}

// ParseLevel reads APP_LOG_LEVEL. Unknown values fall back to info.
func ParseLevel(v string) Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

func Default() *Logger {
	return fallback.Load()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	fallback.Store(logger)
}

func (l *Logger) orDefault() *Logger {
	if l == nil || l.core == nil {
		return Default()
	}
	return l
}

// Sync flushes once; later calls are no-ops so deferred syncs in main and
// shutdown hooks can overlap.
func (l *Logger) Sync() error {
	if l == nil || l.core == nil || !l.synced.CompareAndSwap(false, true) {
		return nil
	}
	return l.core.Sync()
}

func (l *Logger) With(kv ...any) *Logger {
	base := l.orDefault()
	return &Logger{core: base.core.With(fields(kv)...), synced: base.synced}
}

func (l *Logger) Named(name string) *Logger {
	base := l.orDefault()
	return &Logger{core: base.core.Named(name), synced: base.synced}
}

func (l *Logger) Debug(msg string, kv ...any) { l.emit(nil, LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.emit(nil, LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.emit(nil, LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.emit(nil, LevelError, msg, kv) }

func (l *Logger) DebugContext(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, LevelDebug, msg, kv)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, LevelInfo, msg, kv)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, LevelWarn, msg, kv)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, kv ...any) {
	l.emit(ctx, LevelError, msg, kv)
}

// emit is always two frames below the caller, matching AddCallerSkip(2).
func (l *Logger) emit(ctx context.Context, level Level, msg string, kv []any) {
	entry := l.orDefault().core.Check(level, msg)
	if entry == nil {
		return
	}
	out := fields(kv)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			out = append(out,
				zap.Stringer("trace_id", sc.TraceID()),
				zap.Stringer("span_id", sc.SpanID()),
			)
		}
	}
	entry.Write(out...)
}

// fields pairs up alternating keys and values. A non-string key becomes "arg"
// and a dangling key logs null.
func fields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2+2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			key = "arg"
		}
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		if err, isErr := value.(error); isErr {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, value))
	}
	return out
}
