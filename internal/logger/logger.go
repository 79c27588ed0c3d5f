// Package logger provides leveled logging for the engine and CLI.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger provides leveled logging.
type Logger struct {
	level  Level
	logger *log.Logger
}

// Default logger writes warnings and above to stderr until Init is called,
// so dropped-record warnings are never silently lost.
var defaultLogger = &Logger{level: WarnLevel, logger: log.New(os.Stderr, "", log.LstdFlags)}

// Init initializes the default logger with the specified level and format.
func Init(level string, format string) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter is Init with an explicit destination; tests use it to capture output.
func InitWriter(w io.Writer, level string, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	defaultLogger = &Logger{
		level:  ParseLevel(level),
		logger: log.New(w, "", flags),
	}
}

// Enabled reports whether messages at l would be written.
func Enabled(l Level) bool {
	return defaultLogger.level <= l
}

func output(l Level, tag, format string, args ...interface{}) {
	if defaultLogger.level > l {
		return
	}
	_ = defaultLogger.logger.Output(3, fmt.Sprintf("["+tag+"] "+format, args...))
}

func Debug(format string, args ...interface{}) { output(DebugLevel, "DEBUG", format, args...) }

func Info(format string, args ...interface{}) { output(InfoLevel, "INFO", format, args...) }

func Warn(format string, args ...interface{}) { output(WarnLevel, "WARN", format, args...) }

func Error(format string, args ...interface{}) { output(ErrorLevel, "ERROR", format, args...) }
