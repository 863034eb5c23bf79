package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var log = zerolog.New(io.Discard)

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, true
	case "info", "":
		return InfoLevel, true
	case "warning", "warn":
		return WarnLevel, true
	case "error":
		return ErrorLevel, true
	default:
		return InfoLevel, false
	}
}

// Init initializes the logger. Output goes to stderr so that command output
// on stdout stays machine-readable.
func Init(level LogLevel, isService bool) {
	InitWithWriter(os.Stderr, level, isService)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(w io.Writer, level LogLevel, isService bool) {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(w),
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()
	SetLogLevel(level)
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running under an init system
// (init, systemd or Android's init.rc services).
func IsService() bool {
	if os.Getenv("INVOCATION_ID") != "" || os.Getenv("ANDROID_SOCKET_zygote") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && syscall.Getpgrp() == syscall.Getpid() {
		return true
	}

	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with its error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code())).
		AnErr("error", err)}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with its error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Fatal().
		Str("error_code", string(err.Code())).
		AnErr("error", err)}
}

type componentLogger struct {
	component string
}

// Default returns a Logger backed by the package-level logger.
func Default() Logger {
	return componentLogger{}
}

func (c componentLogger) event(e *zerolog.Event) *LogEvent {
	if c.component != "" {
		e = e.Str("component", c.component)
	}
	return &LogEvent{e}
}

func (c componentLogger) Debug() *LogEvent { return c.event(log.Debug()) }
func (c componentLogger) Info() *LogEvent  { return c.event(log.Info()) }
func (c componentLogger) Warn() *LogEvent  { return c.event(log.Warn()) }
func (c componentLogger) Error() *LogEvent { return c.event(log.Error()) }

func (c componentLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return c.event(log.Error().
		Str("error_code", string(err.Code())).
		AnErr("error", err))
}

func (componentLogger) With(component string) Logger {
	return componentLogger{component: component}
}
