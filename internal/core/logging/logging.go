// Package logging builds the zap logger shared by the CLI and the MCP server.
package logging

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a zap logger whose level can be raised temporarily.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel

	mu    sync.Mutex
	muted int
	saved zapcore.Level
}

// New returns a console logger writing to w. The level is Warn by default,
// Debug when verbose and Error when quiet.
func New(w io.Writer, verbose, quiet bool) *Logger {
	lvl := zapcore.WarnLevel
	switch {
	case quiet:
		lvl = zapcore.ErrorLevel
	case verbose:
		lvl = zapcore.DebugLevel
	}
	level := zap.NewAtomicLevelAt(lvl)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)

	return &Logger{Logger: zap.New(core), level: level}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
}

// Level reports the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Mute silences everything below Fatal until the returned func is called.
// Nested calls restore the original level only when the outermost one ends.
func (l *Logger) Mute() (restore func()) {
	l.mu.Lock()
	if l.muted == 0 {
		l.saved = l.level.Level()
		l.level.SetLevel(zapcore.FatalLevel)
	}
	l.muted++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.muted--
			if l.muted == 0 {
				l.level.SetLevel(l.saved)
			}
		})
	}
}
