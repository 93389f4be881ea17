// Package log provides the logging facade used throughout revd. It wraps
// logrus so that packages depend on a narrow interface instead of a concrete
// logging implementation.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Fields contains key-value pairs attached to a log entry.
type Fields = logrus.Fields

// Logger is the logging interface used by revd's packages.
type Logger interface {
	// WithField creates a new logger with the given field appended.
	WithField(key string, value any) Logger
	// WithFields creates a new logger with the given fields appended.
	WithFields(fields Fields) Logger
	// WithError creates a new logger with an error field appended.
	WithError(err error) Logger

	// Debug writes a log message at debug level.
	Debug(msg string)
	// Info writes a log message at info level.
	Info(msg string)
	// Warn writes a log message at warn level.
	Warn(msg string)
	// Error writes a log message at error level.
	Error(msg string)
}

// LogrusLogger is an implementation of the Logger interface backed by a
// logrus entry.
type LogrusLogger struct {
	entry *logrus.Entry
}

// Configure creates a new logger writing to the given output with the
// requested format ("json" or "text") and level. An empty level defaults to
// "info".
func Configure(out io.Writer, format, level string) (LogrusLogger, error) {
	logger := logrus.New()
	logger.Out = out

	switch format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	case "text", "":
		logger.Formatter = &logrus.TextFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return LogrusLogger{}, fmt.Errorf("invalid logger format %q", format)
	}

	if level == "" {
		level = "info"
	}

	logrusLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return LogrusLogger{}, fmt.Errorf("parse level: %w", err)
	}
	logger.SetLevel(logrusLevel)

	return LogrusLogger{entry: logrus.NewEntry(logger)}, nil
}

// NewNopLogger returns a logger that discards everything written to it.
func NewNopLogger() LogrusLogger {
	logger := logrus.New()
	logger.Out = io.Discard
	return LogrusLogger{entry: logrus.NewEntry(logger)}
}

// FromLogrusEntry wraps an existing logrus entry.
func FromLogrusEntry(entry *logrus.Entry) LogrusLogger {
	return LogrusLogger{entry: entry}
}

// LogrusEntry returns the underlying logrus entry.
func (l LogrusLogger) LogrusEntry() *logrus.Entry { return l.entry }

// WithField creates a new logger with the given field appended.
func (l LogrusLogger) WithField(key string, value any) Logger {
	return LogrusLogger{entry: l.entry.WithField(key, value)}
}

// WithFields creates a new logger with the given fields appended.
func (l LogrusLogger) WithFields(fields Fields) Logger {
	return LogrusLogger{entry: l.entry.WithFields(fields)}
}

// WithError creates a new logger with an error field appended.
func (l LogrusLogger) WithError(err error) Logger {
	return LogrusLogger{entry: l.entry.WithError(err)}
}

// Debug writes a log message at debug level.
func (l LogrusLogger) Debug(msg string) { l.entry.Debug(msg) }

// Info writes a log message at info level.
func (l LogrusLogger) Info(msg string) { l.entry.Info(msg) }

// Warn writes a log message at warn level.
func (l LogrusLogger) Warn(msg string) { l.entry.Warn(msg) }

// Error writes a log message at error level.
func (l LogrusLogger) Error(msg string) { l.entry.Error(msg) }
