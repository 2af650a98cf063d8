package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	inner zerolog.Logger
}

// NewLogger returns a logger writing human readable lines to stderr.
func NewLogger(level int) *defaultLogger {
	return newLogger(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// NewJSONLogger returns a logger writing one json object per line to w.
func NewJSONLogger(level int, w io.Writer) *defaultLogger {
	return newLogger(level, w)
}

func newLogger(level int, w io.Writer) *defaultLogger {
	return &defaultLogger{
		level: level,
		inner: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	if l.level <= DEBUG {
		l.inner.Debug().Msgf(msg, a...)
	}
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	if l.level <= INFO {
		l.inner.Info().Msgf(msg, a...)
	}
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	if l.level <= WARNING {
		l.inner.Warn().Msgf(msg, a...)
	}
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	if l.level <= ERROR {
		l.inner.Error().Msgf(msg, a...)
	}
}

// ParseLevel converts a level name from the configuration. Unknown names fall
// back to INFO.
func ParseLevel(s string) int {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "off":
		return SILENCE
	default:
		return INFO
	}
}
