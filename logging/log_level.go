package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLogLevel parses debug, info, warn/warning, error or fatal, ignoring
// case. Anything else yields defaultLevel.
func ParseLogLevel(levelStr string, defaultLevel zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return defaultLevel
	}
}

// LevelFor resolves the effective level. Dev mode always logs at debug.
func LevelFor(levelStr string, dev bool) zapcore.Level {
	if dev {
		return zapcore.DebugLevel
	}
	return ParseLogLevel(levelStr, zapcore.InfoLevel)
}
