package plugin

import (
	"fmt"

	"xmas/hal"
)

// Level is a log severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger writes "<component>: <level>: <message>" lines to a hal.Logger.
//
// A nil *Logger or a Logger without output drops everything.
type Logger struct {
	out       hal.Logger
	component string
	min       Level
}

// NewLogger returns a logger for component that emits LevelInfo and above.
func NewLogger(out hal.Logger, component string) *Logger {
	return &Logger{out: out, component: component, min: LevelInfo}
}

// SetLevel sets the minimum emitted level.
func (l *Logger) SetLevel(min Level) {
	if l == nil {
		return
	}
	l.min = min
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || l.out == nil || level < l.min {
		return
	}
	l.out.WriteLineString(fmt.Sprintf("%s: %s: %s", l.component, level, fmt.Sprintf(format, args...)))
}
