package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger receives the messages of an ants pool, mostly recovered
// task panics, and logs them at error level.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	xl, ok := logger.(*xLogger)
	if !ok {
		return &AntsXLogger{logger: logger}
	}
	return &AntsXLogger{logger: xl.named("Ants")}
}
