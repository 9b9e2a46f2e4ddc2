// Package log is the logging front of tpoll pollers, backed by zap.
package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable holding the initial log level.
const EnvLevel = "TPOLL_LOG_LEVEL"

var level = zap.NewAtomicLevelAt(levelFromEnv())

// Default is a console zap logger named "tpoll" writing to stdout at the level
// taken from TPOLL_LOG_LEVEL, info when unset or invalid. Replace it before
// creating pollers to route their output elsewhere.
var Default Logger = zap.New(
	zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	),
	zap.AddCaller(),
	zap.AddCallerSkip(1),
).Named("tpoll").Sugar()

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
	EncodeName:     zapcore.FullNameEncoder,
}

func levelFromEnv() zapcore.Level {
	l, err := zapcore.ParseLevel(strings.TrimSpace(os.Getenv(EnvLevel)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// SetLevel changes the level of Default at runtime, e.g. "debug" to watch
// loop wakeups. It has no effect once Default has been replaced.
func SetLevel(l string) error {
	parsed, err := zapcore.ParseLevel(l)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

// Level returns the level SetLevel or TPOLL_LOG_LEVEL last set.
func Level() string {
	return level.Level().String()
}

// Logger is what pollers write to. *zap.SugaredLogger satisfies it, so does
// any printf-style logger with the same levels.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	// Fatal and Fatalf exit the process after writing.
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// Debug writes loop lifecycle messages: start, exit, wakeups.
func Debug(args ...any) { Default.Debug(args...) }

// Debugf is Debug with a format.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Info writes through Default at info level.
func Info(args ...any) { Default.Info(args...) }

// Infof is Info with a format.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warn reports recoverable trouble such as a facility that failed to close.
func Warn(args ...any) { Default.Warn(args...) }

// Warnf is Warn with a format.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Error reports callback failures and poller faults.
func Error(args ...any) { Default.Error(args...) }

// Errorf is Error with a format.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Fatal writes through Default and exits. Pollers never call it; a fault is
// reported with Error and left to the fault handler.
func Fatal(args ...any) { Default.Fatal(args...) }

// Fatalf is Fatal with a format.
func Fatalf(format string, args ...any) { Default.Fatalf(format, args...) }
