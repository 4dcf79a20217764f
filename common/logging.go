// Package common provides the leveled logger used across the pdftext
// packages. Callers that want diagnostics (font fallback decisions,
// skipped content streams, malformed operands) opt in with SetLogger;
// by default nothing is logged.
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Logger is the interface used for logging throughout pdftext.
type Logger interface {
	Error(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Notice(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Trace(format string, args ...interface{})
	IsLogLevel(level LogLevel) bool
}

// DummyLogger discards everything. It is the default.
type DummyLogger struct{}

func (DummyLogger) Error(format string, args ...interface{})   {}
func (DummyLogger) Warning(format string, args ...interface{}) {}
func (DummyLogger) Notice(format string, args ...interface{})  {}
func (DummyLogger) Info(format string, args ...interface{})    {}
func (DummyLogger) Debug(format string, args ...interface{})   {}
func (DummyLogger) Trace(format string, args ...interface{})   {}

func (DummyLogger) IsLogLevel(level LogLevel) bool { return false }

// LogLevel is the verbosity level for logging. The most important logs
// have the lowest values: level error = 0, level trace = 5.
type LogLevel int

const (
	LogLevelTrace   LogLevel = 5
	LogLevelDebug   LogLevel = 4
	LogLevelInfo    LogLevel = 3
	LogLevelNotice  LogLevel = 2
	LogLevelWarning LogLevel = 1
	LogLevelError   LogLevel = 0
)

// ConsoleLogger writes logs to os.Stderr.
type ConsoleLogger struct {
	LogLevel LogLevel
}

// NewConsoleLogger creates a new console logger at the given level.
func NewConsoleLogger(logLevel LogLevel) *ConsoleLogger {
	return &ConsoleLogger{LogLevel: logLevel}
}

func (l ConsoleLogger) IsLogLevel(level LogLevel) bool {
	return l.LogLevel >= level
}

func (l ConsoleLogger) Error(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelError {
		logToWriter(os.Stderr, "[ERROR] ", format, args...)
	}
}

func (l ConsoleLogger) Warning(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelWarning {
		logToWriter(os.Stderr, "[WARNING] ", format, args...)
	}
}

func (l ConsoleLogger) Notice(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelNotice {
		logToWriter(os.Stderr, "[NOTICE] ", format, args...)
	}
}

func (l ConsoleLogger) Info(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelInfo {
		logToWriter(os.Stderr, "[INFO] ", format, args...)
	}
}

func (l ConsoleLogger) Debug(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelDebug {
		logToWriter(os.Stderr, "[DEBUG] ", format, args...)
	}
}

func (l ConsoleLogger) Trace(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelTrace {
		logToWriter(os.Stderr, "[TRACE] ", format, args...)
	}
}

// Log is the package-level logger used by every pdftext package. It is a
// DummyLogger until a caller calls SetLogger.
var Log Logger = DummyLogger{}

// SetLogger installs logger as the package-level logger used by pdftext.
func SetLogger(logger Logger) {
	Log = logger
}

// WriterLogger writes logs to an arbitrary io.Writer, useful for tests
// that want to assert on emitted diagnostics.
type WriterLogger struct {
	LogLevel LogLevel
	Output   io.Writer
}

// NewWriterLogger creates a logger that writes to writer.
func NewWriterLogger(logLevel LogLevel, writer io.Writer) *WriterLogger {
	return &WriterLogger{Output: writer, LogLevel: logLevel}
}

func (l WriterLogger) IsLogLevel(level LogLevel) bool {
	return l.LogLevel >= level
}

func (l WriterLogger) Error(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelError {
		logToWriter(l.Output, "[ERROR] ", format, args...)
	}
}

func (l WriterLogger) Warning(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelWarning {
		logToWriter(l.Output, "[WARNING] ", format, args...)
	}
}

func (l WriterLogger) Notice(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelNotice {
		logToWriter(l.Output, "[NOTICE] ", format, args...)
	}
}

func (l WriterLogger) Info(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelInfo {
		logToWriter(l.Output, "[INFO] ", format, args...)
	}
}

func (l WriterLogger) Debug(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelDebug {
		logToWriter(l.Output, "[DEBUG] ", format, args...)
	}
}

func (l WriterLogger) Trace(format string, args ...interface{}) {
	if l.LogLevel >= LogLevelTrace {
		logToWriter(l.Output, "[TRACE] ", format, args...)
	}
}

// logToWriter writes a log line prefixed by the caller's file:line.
func logToWriter(f io.Writer, prefix string, format string, args ...interface{}) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}
	src := fmt.Sprintf("%s%s:%d ", prefix, file, line) + format + "\n"
	fmt.Fprintf(f, src, args...)
}
