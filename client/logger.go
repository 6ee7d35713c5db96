package client

// Logger is an optional package logger for job diagnostics.
type Logger interface {
	// Debugf logs job lifecycle details.
	Debugf(format string, args ...any)
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
