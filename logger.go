package paretoq

import "github.com/sirupsen/logrus"

// Logger interface matches the implementation of slog, so the standard
// library's slog.Logger can be plugged in directly.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
}

// DiscardLogger is the default logger that compiles to a no-op
type DiscardLogger struct{}

func (d DiscardLogger) Error(string, ...any) {}

func (d DiscardLogger) Warn(string, ...any) {}

func (d DiscardLogger) Info(string, ...any) {}

// LogrusLogger wraps a logrus.Logger to implement Logger.
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger creates a Logger from a logrus.Logger.
func NewLogrusLogger(logger *logrus.Logger) Logger {
	return &LogrusLogger{logger: logger}
}

func (l *LogrusLogger) Error(msg string, args ...any) {
	l.logger.WithFields(argsToFields(args)).Error(msg)
}

func (l *LogrusLogger) Warn(msg string, args ...any) {
	l.logger.WithFields(argsToFields(args)).Warn(msg)
}

func (l *LogrusLogger) Info(msg string, args ...any) {
	l.logger.WithFields(argsToFields(args)).Info(msg)
}

func argsToFields(args []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	return fields
}
