package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewConsoleCore splits output by level: debug and info go to stdout, warn and
// above to stderr. Both streams use the same encoder.
func NewConsoleCore(level zapcore.LevelEnabler, enc zapcore.Encoder, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	low, high := splitCores(level, enc, stdout, stderr)
	return zapcore.NewTee(low, high)
}

// NewStatusCore is NewConsoleCore without structured fields. Each stream is
// wrapped on its own so the level split still holds.
func NewStatusCore(level zapcore.LevelEnabler, enc zapcore.Encoder, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	low, high := splitCores(level, enc, stdout, stderr)
	return zapcore.NewTee(messageOnlyCore{low}, messageOnlyCore{high})
}

func splitCores(level zapcore.LevelEnabler, enc zapcore.Encoder, stdout, stderr zapcore.WriteSyncer) (low, high zapcore.Core) {
	low = zapcore.NewCore(enc, stdout, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l < zapcore.WarnLevel
	}))
	high = zapcore.NewCore(enc.Clone(), stderr, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l >= zapcore.WarnLevel
	}))
	return low, high
}

// NewFileCore writes JSON entries to w.
func NewFileCore(level zapcore.LevelEnabler, w zapcore.WriteSyncer) zapcore.Core {
	return zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), w, level)
}

// messageOnlyCore drops structured fields so status lines stay readable; the
// file sink still receives them. It must wrap a leaf core: Write on a tee
// bypasses the children's level checks.
type messageOnlyCore struct {
	zapcore.Core
}

func (c messageOnlyCore) With([]zapcore.Field) zapcore.Core {
	return c
}

func (c messageOnlyCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c messageOnlyCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	return c.Core.Write(ent, nil)
}
