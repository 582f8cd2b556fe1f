package logger

import "go.temporal.io/sdk/log"

// temporalLogger routes SDK logs through the application logger
type temporalLogger struct {
	sugar *Logger
}

var (
	_ log.Logger     = (*temporalLogger)(nil)
	_ log.WithLogger = (*temporalLogger)(nil)
)

// GetTemporalLogger returns the logger handed to the Temporal client
func (l *Logger) GetTemporalLogger() log.Logger {
	return &temporalLogger{sugar: l.With("component", "temporal")}
}

func (t *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.sugar.Debugw(msg, keyvals...)
}

func (t *temporalLogger) Info(msg string, keyvals ...interface{}) {
	t.sugar.Infow(msg, keyvals...)
}

func (t *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.sugar.Warnw(msg, keyvals...)
}

func (t *temporalLogger) Error(msg string, keyvals ...interface{}) {
	t.sugar.Errorw(msg, keyvals...)
}

// With lets the SDK attach workflow and activity ids to every line
func (t *temporalLogger) With(keyvals ...interface{}) log.Logger {
	return &temporalLogger{sugar: t.sugar.With(keyvals...)}
}
