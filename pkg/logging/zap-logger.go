package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey int

const (
	fieldsKey contextKey = iota
)

type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

func NewZapLogger(level zapcore.Level, opts ...Option) (*ZapLogger, error) {
	atomicLevel := zap.NewAtomicLevelAt(level)
	s := defaultSettings(atomicLevel)
	for _, opt := range opts {
		opt(s)
	}
	logger, err := s.config.Build(s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return &ZapLogger{
		logger: logger,
		level:  atomicLevel,
	}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *ZapLogger {
	return &ZapLogger{
		logger: zap.NewNop(),
		level:  zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

// ParseLevel accepts zap level names ("debug", "info", ...).
func ParseLevel(text string) (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(text)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", text, err)
	}
	return level, nil
}

func (z *ZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (z *ZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (z *ZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (z *ZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (z *ZapLogger) Sync() error {
	return z.logger.Sync() //nolint:wrapcheck // unnecessary
}

func (z *ZapLogger) log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if !z.level.Enabled(level) {
		return
	}
	fields = append(fieldsFromContext(ctx), fields...)
	z.logger.Log(level, msg, fields...)
}

// WithContextFields returns a copy of ctx whose *Ctx log calls carry fields.
func WithContextFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing := fieldsFromContext(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

func fieldsFromContext(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(fieldsKey).([]zap.Field)
	if !ok {
		return nil
	}
	return fields
}
