package cli

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger adapts zerolog to client.Logger.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger writes human-readable logs to w at or above level.
// Unknown levels fall back to warn.
func NewLogger(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(lvl).
		With().Timestamp().Str("component", "playparse").Logger()
	return &Logger{zl: zl}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Infof logs CLI progress.
func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Errorf logs a terminal CLI error.
func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
