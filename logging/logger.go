// Package logging wraps zap for sdgen. Status lines go to stdout, warnings and
// errors to stderr, and an optional rotating JSON file gets everything with
// structured fields. Sensitive values are redacted before any core sees them.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures NewLogger.
type Options struct {
	Level zapcore.Level

	// Development switches the console to timestamped, leveled lines with
	// caller and structured fields.
	Development bool

	// Color enables ANSI level colors in development output.
	Color bool

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	// FilePath enables the JSON file sink when non-empty.
	FilePath string
	File     FileWriterConfig
}

// Logger is a redacting wrapper around zap.Logger.
//
// Example:
//
//	logger := NewLogger(Options{Level: InfoLevel})
//	defer logger.Sync()
//	logger.Info("Using cached model files", zap.String("dir", dir))
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

// NewLogger builds the console tee and, when opts.FilePath is set, the file sink.
func NewLogger(opts Options) *Logger {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	outSync := zapcore.Lock(zapcore.AddSync(stdout))
	errSync := zapcore.Lock(zapcore.AddSync(stderr))

	var console zapcore.Core
	if opts.Development {
		enc := zapcore.NewConsoleEncoder(NewConsoleEncoderConfig(opts.Color))
		console = NewConsoleCore(opts.Level, enc, outSync, errSync)
	} else {
		enc := zapcore.NewConsoleEncoder(NewStatusEncoderConfig())
		console = NewStatusCore(opts.Level, enc, outSync, errSync)
	}

	cores := []zapcore.Core{console}
	if opts.FilePath != "" {
		cores = append(cores, NewFileCore(opts.Level, NewFileWriter(opts.FilePath, opts.File)))
	}

	return NewWithCore(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

// NewWithCore wraps an existing core. Tests pass a zaptest/observer core.
func NewWithCore(core zapcore.Core, opts ...zap.Option) *Logger {
	z := zap.New(core, opts...)
	return &Logger{zap: z, sugar: z.Sugar()}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return NewWithCore(zapcore.NewNopCore())
}

// Sync flushes buffered entries. Syncing a terminal or pipe can fail with
// EINVAL on Linux; callers writing to stdout afterwards may ignore the error.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(RedactSensitiveData(msg), redactFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(RedactSensitiveData(msg), redactFields(fields)...)
}

// Debugf logs a formatted message at DebugLevel.
func (l *Logger) Debugf(template string, args ...interface{}) {
	if l.zap.Core().Enabled(zapcore.DebugLevel) {
		l.sugar.Debug(RedactSensitiveData(fmt.Sprintf(template, args...)))
	}
}

// Infof logs a formatted message at InfoLevel.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.sugar.Info(RedactSensitiveData(fmt.Sprintf(template, args...)))
}

// Warnf logs a formatted message at WarnLevel.
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.sugar.Warn(RedactSensitiveData(fmt.Sprintf(template, args...)))
}

// Errorf logs a formatted message at ErrorLevel.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.sugar.Error(RedactSensitiveData(fmt.Sprintf(template, args...)))
}

// Statusf logs a formatted message at InfoLevel without redacting it. Use it
// for echoing user input such as the prompt; fields on the logger are still
// redacted.
func (l *Logger) Statusf(template string, args ...interface{}) {
	l.sugar.Infof(template, args...)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.zap.With(redactFields(fields)...)
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Named returns a child logger with a sub-name, e.g. "hub".
func (l *Logger) Named(name string) *Logger {
	z := l.zap.Named(name)
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = redactField(f)
	}
	return out
}

func redactField(f zap.Field) zap.Field {
	if IsSensitiveField(f.Key) {
		return zap.String(f.Key, RedactedPlaceholder)
	}
	if f.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(f.String); redacted != f.String {
			return zap.String(f.Key, redacted)
		}
	}
	if f.Type == zapcore.ErrorType {
		if err, ok := f.Interface.(error); ok {
			if redacted := RedactSensitiveData(err.Error()); redacted != err.Error() {
				return zap.String(f.Key, redacted)
			}
		}
	}
	return f
}
