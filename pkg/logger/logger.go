// Package logger provides named zap loggers and context-aware helpers that
// tag every entry with the request id carried by the context.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level    string
	Encoding string
}

type ctxKey struct{}

var (
	mu   sync.RWMutex
	root *zap.SugaredLogger
)

// Init replaces the root logger. Loggers returned by MustNamed before Init
// keep their old core.
func Init(conf Config) error {
	level := zap.NewAtomicLevel()
	if conf.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(conf.Level))); err != nil {
			return fmt.Errorf("parse log level %q: %w", conf.Level, err)
		}
	}

	encoding := conf.Encoding
	if encoding == "" {
		encoding = "json"
	}

	zconf := zap.NewProductionConfig()
	zconf.Level = level
	zconf.Encoding = encoding
	zconf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zconf.OutputPaths = []string{"stdout"}
	zconf.ErrorOutputPaths = []string{"stderr"}

	l, err := zconf.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	root = l.Sugar()
	mu.Unlock()
	return nil
}

func get() *zap.SugaredLogger {
	mu.RLock()
	l := root
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		l, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: fallback to nop: %v\n", err)
			l = zap.NewNop()
		}
		root = l.Sugar()
	}
	return root
}

// MustNamed returns a child logger with the given name.
func MustNamed(name string) *zap.SugaredLogger {
	return get().Named(name)
}

// WithRequestID stores the request id that context-aware helpers attach.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	l := get()
	if id := RequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}

func Sync() {
	_ = get().Sync()
}
