package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type loggerContextKey struct {
	name string
}

var loggerCtxKey = &loggerContextKey{"logger"}

func NewLogger(ctx context.Context, serviceName, serviceVersion, level string) (context.Context, zerolog.Logger) {
	return NewLoggerWithWriter(ctx, os.Stdout, serviceName, serviceVersion, level)
}

func NewLoggerWithWriter(ctx context.Context, w io.Writer, serviceName, serviceVersion, level string) (context.Context, zerolog.Logger) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().
		Str("service", strings.ToLower(serviceName)).
		Str("version", serviceVersion).
		Logger()

	ctx = NewContextWithLogger(ctx, logger)
	return ctx, logger
}

func NewContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	ctx = context.WithValue(ctx, loggerCtxKey, logger)
	return ctx
}

func GetLoggerFromContext(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(zerolog.Logger)

	if !ok {
		return log.Logger
	}

	return logger
}
