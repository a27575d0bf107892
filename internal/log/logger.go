// Package log is dirtidy's structured logger. It wraps logrus with the
// package-level helpers used throughout the codebase and knows how to
// attach the typed errors from internal/errors as fields.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	serr "dirtidy/internal/errors"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value pair
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out   io.Writer
	json  bool
	file  string
	level logrus.Level
}

// Option configures a Logger
type Option func(*options)

// WithOutput sets the writer log lines go to (stderr by default)
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithLevel sets the minimum level written ("debug", "info", "warn",
// "error"). Unknown names leave the default, debug.
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// WithFile additionally appends log lines to the file at path
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// NewLogger creates a logger from options
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stderr, level: logrus.DebugLevel}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(o.level)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg:  "message",
				logrus.FieldKeyTime: "timestamp",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l := &Logger{}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out = io.MultiWriter(o.out, f)
		} else {
			fmt.Fprintf(o.out, "log: cannot open %s: %v\n", o.file, err)
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the global logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the global logger's log file and switches back to a
// default logger on stderr.
func Close() error {
	err := logger.Close()
	logger = NewLogger()
	return err
}

// SetDebug toggles debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// IsDebug reports whether debug output is enabled
func IsDebug() bool {
	return isDebug.Load()
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to the underlying entry
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// WithError attaches err and, for typed errors, their kind and subject
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{F("error", err.Error()), F("error_kind", int(serr.KindOf(err)))}

	var fileErr *serr.FileError
	var configErr *serr.ConfigError
	var historyErr *serr.HistoryError
	switch {
	case serr.As(err, &fileErr):
		fields = append(fields, F("path", fileErr.Path()))
	case serr.As(err, &configErr):
		fields = append(fields, F("param", configErr.Param()))
	case serr.As(err, &historyErr):
		fields = append(fields, F("history", historyErr.Path()))
	}
	return fields
}

func (l *Logger) log(depth int, level logrus.Level, msg string) {
	if level == logrus.DebugLevel && !isDebug.Load() {
		return
	}
	entry := l.entry
	if _, file, line, ok := runtime.Caller(depth); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

// Info logs at info level
func (l *Logger) Info(msg string) { l.log(2, logrus.InfoLevel, msg) }

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(2, logrus.InfoLevel, fmt.Sprintf(format, args...))
}

// Debug logs at debug level when debug is enabled
func (l *Logger) Debug(msg string) { l.log(2, logrus.DebugLevel, msg) }

// Debugf logs a formatted message at debug level when debug is enabled
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(2, logrus.DebugLevel, fmt.Sprintf(format, args...))
}

// Warn logs at warn level
func (l *Logger) Warn(msg string) { l.log(2, logrus.WarnLevel, msg) }

// Warnf logs a formatted message at warn level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(2, logrus.WarnLevel, fmt.Sprintf(format, args...))
}

// Error logs at error level
func (l *Logger) Error(msg string) { l.log(2, logrus.ErrorLevel, msg) }

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(2, logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Package-level helpers write to the global logger.

func Info(format string, args ...interface{}) {
	logger.log(2, logrus.InfoLevel, fmt.Sprintf(format, args...))
}

func Debug(format string, args ...interface{}) {
	logger.log(2, logrus.DebugLevel, fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	logger.log(2, logrus.WarnLevel, fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	logger.log(2, logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

// LogWithFields returns the global logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the global logger with err attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with msg at error level
func LogError(err error, msg string) {
	logger.WithError(err).log(2, logrus.ErrorLevel, msg)
}
