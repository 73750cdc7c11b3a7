package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// ParseLevel converts a LOG_LEVEL value into a LogLevel. Unknown values map to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
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
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Logger is a leveled logger with bound context fields. Components receive
// one through their constructors; a nil *Logger writes to the default logger.
type Logger struct {
	zl    zerolog.Logger
	level LogLevel
}

// New creates a Logger writing to w. When console is true, output is
// human-readable instead of JSON lines.
func New(w io.Writer, level LogLevel, console bool) *Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).Level(level.zerologLevel()).With().Timestamp().Logger()
	return &Logger{zl: zl, level: level}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), level: LevelError}
}

// With returns a child logger that adds key=value to every entry.
func (l *Logger) With(key, value string) *Logger {
	base := l.resolve()
	return &Logger{zl: base.zl.With().Str(key, value).Logger(), level: base.level}
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() LogLevel {
	return l.resolve().level
}

// IsDebugEnabled returns true if debug entries are emitted
func (l *Logger) IsDebugEnabled() bool {
	return l.resolve().level <= LevelDebug
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.resolve().zl.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.resolve().zl.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.resolve().zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.resolve().zl.Error().Msgf(format, args...)
}

func (l *Logger) resolve() *Logger {
	if l == nil {
		return Default()
	}
	return l
}

var (
	defaultLogger atomic.Pointer[Logger]
	defaultOnce   sync.Once
)

// levelFromEnv reads DEBUG first, then LOG_LEVEL.
func levelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// Default returns the process-wide logger, configured from DEBUG, LOG_LEVEL
// and LOG_FORMAT on first use.
func Default() *Logger {
	defaultOnce.Do(func() {
		if defaultLogger.Load() != nil {
			return
		}
		defaultLogger.Store(FromEnv())
	})
	return defaultLogger.Load()
}

// FromEnv builds a stderr logger from DEBUG, LOG_LEVEL and LOG_FORMAT.
func FromEnv() *Logger {
	console := !strings.EqualFold(os.Getenv("LOG_FORMAT"), "json")
	return New(os.Stderr, levelFromEnv(), console)
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultOnce.Do(func() {})
	defaultLogger.Store(l)
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	return Default().level
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	Default().zl.WithLevel(zerolog.FatalLevel).Msgf(format, args...)
	os.Exit(1)
}
