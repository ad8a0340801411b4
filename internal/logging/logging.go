// Package logging builds the zap logger used by the CLI and adapts it to the
// key-value Logger interfaces of the internal packages.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component is the field key naming the emitting package.
const Component = "component"

// New returns a console logger writing to w. Debug messages are enabled when
// verbose is set.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// Adapter exposes a zap logger through Debug/Info/Warn/Error with loosely
// typed key-value pairs.
type Adapter struct {
	sugar *zap.SugaredLogger
}

// NewAdapter wraps l, tagging every entry with the component name.
func NewAdapter(l *zap.Logger, component string) *Adapter {
	return &Adapter{sugar: l.With(zap.String(Component, component)).Sugar()}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.sugar.Debugw(msg, keysAndValues...)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.sugar.Infow(msg, keysAndValues...)
}

func (a *Adapter) Warn(msg string, keysAndValues ...interface{}) {
	a.sugar.Warnw(msg, keysAndValues...)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.sugar.Errorw(msg, keysAndValues...)
}
