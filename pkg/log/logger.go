// Package log configures the process-wide slog loggers.
//
// Every category logger writes to the console and to a size-rotated log file.
// Call SetupLogger once at startup; before that, the category helpers fall back
// to slog.Default so packages can log from tests without any setup.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat is the timestamp layout written on every line.
const TimeFormat = "2006-01-02 15:04:05"

// Options configures SetupLogger.
type Options struct {
	// FilePath is the rotated log file. Empty disables file output.
	FilePath string
	// Level is the minimum level written.
	Level slog.Level
	// Console receives a copy of every line. Defaults to os.Stdout.
	Console io.Writer
	// MaxSizeMB, MaxBackups and MaxAgeDays are handed to lumberjack.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger owns the handler shared by the category loggers.
type Logger struct {
	base  *slog.Logger
	file  *lumberjack.Logger
	level *slog.LevelVar
}

var (
	// GlobalLogger is set by SetupLogger.
	GlobalLogger *Logger
	mu           sync.RWMutex
)

// SetupLogger installs GlobalLogger and makes it the slog default.
func SetupLogger(opts Options) error {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{console}

	var file *lumberjack.Logger
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		file = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    valueOr(opts.MaxSizeMB, 10),
			MaxBackups: valueOr(opts.MaxBackups, 5),
			MaxAge:     valueOr(opts.MaxAgeDays, 28),
		}
		writers = append(writers, file)
	}

	level := new(slog.LevelVar)
	level.Set(opts.Level)
	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})

	l := &Logger{base: slog.New(handler), file: file, level: level}
	mu.Lock()
	GlobalLogger = l
	mu.Unlock()
	slog.SetDefault(l.base)
	return nil
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.String(slog.TimeKey, a.Value.Time().Format(TimeFormat))
	}
	return a
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level slog.Level) {
	if l != nil {
		l.level.Set(level)
	}
}

// Sync closes the rotated file so buffered lines reach disk.
func (l *Logger) Sync() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a slog level.
// Unknown values yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func category(name string) *slog.Logger {
	mu.RLock()
	l := GlobalLogger
	mu.RUnlock()
	if l == nil {
		return slog.Default().With("category", name)
	}
	return l.base.With("category", name)
}

// ApplicationLogger logs process lifecycle and configuration.
func ApplicationLogger() *slog.Logger { return category("application") }

// DiscordLogger logs gateway and REST activity.
func DiscordLogger() *slog.Logger { return category("discord") }

// FarmLogger logs the order/donation loop.
func FarmLogger() *slog.Logger { return category("farm") }

// DatabaseLogger logs the reward ledger.
func DatabaseLogger() *slog.Logger { return category("database") }

// ErrorLoggerRaw logs failures that need an operator's attention.
func ErrorLoggerRaw() *slog.Logger { return category("error") }
