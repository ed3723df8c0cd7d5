// Package logger provides process-wide logging for the dpres CLI.
// Messages go to stderr through a zap console core: warnings and errors
// by default, everything when verbose mode is enabled via the --verbose
// flag. When a log file is configured, every message is also written to
// it as JSON.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	quiet   bool
	output  io.Writer = os.Stderr
	file    zapcore.WriteSyncer
	closeFn func()
	sugar   = build()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	sugar = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetQuiet turns console logging off. The log file, if any, still
// receives every message.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
	sugar = build()
}

// SetOutput sets the console writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	sugar = build()
}

// SetFile appends JSON logs to path. An empty path disables file logging.
func SetFile(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if closeFn != nil {
		closeFn()
		closeFn = nil
		file = nil
	}

	if path != "" {
		ws, cleanup, err := zap.Open(path)
		if err != nil {
			sugar = build()
			return err
		}
		file = ws
		closeFn = cleanup
	}

	sugar = build()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

// Debug logs a message visible only in verbose mode.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Info logs an informational message visible only in verbose mode.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}

// build assembles the logger from the current settings (caller must hold lock).
func build() *zap.SugaredLogger {
	var cores []zapcore.Core

	if !quiet {
		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()),
			zapcore.AddSync(output),
			level,
		))
	}

	if file != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			file,
			zapcore.DebugLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
