// Package logx builds the zap loggers used across the runtime, ctx model,
// addon transport and api client, so that every component's log lines are
// formatted the same way.
package logx

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new logger with sane defaults and the passed level.
// Supported levels are: debug, info, warn, error.
// Only logs with that level and above are then logged (e.g. with "info" no
// debug logs will be logged). The encoding parameter is optional and only
// used when non-empty: "console" (default) or "json".
func New(level, encoding string) (*zap.Logger, error) {
	logLevel, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse log level: %w", err)
	}
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(logLevel)
	// Deactivate stacktraces for warn level.
	logConfig.Development = false
	logConfig.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   nil,
	}
	if encoding != "" {
		logConfig.Encoding = encoding
	}
	// "console" encoding works without a caller encoder, but "json" doesn't.
	if logConfig.Encoding != "console" {
		logConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("couldn't create logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a level string to a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return 0, errors.New(`unknown log level - only knows ["debug", "info", "warn", "error"]`)
}
