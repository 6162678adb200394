// Package logger wraps zerolog with a single global instance configured
// once at startup (output format taken from Config.Format, which the CLI
// always sets to console; level driven by --log-level/--debug).
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel is a validated subset of zerolog's levels accepted from config.
type LogLevel string

const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

// Config configures the global logger.
type Config struct {
	Level  LogLevel
	Format string // "console" or "json"
	Output io.Writer
}

var (
	mu  sync.RWMutex
	log zerolog.Logger = zerolog.New(io.Discard)
)

// Init configures the process-wide logger. Safe to call once at startup;
// subsequent calls replace the global logger (used by tests that want
// isolated output).
func Init(cfg Config) error {
	lvl, err := zerolog.ParseLevel(string(cfg.Level))
	if err != nil {
		return err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	mu.Lock()
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// Get returns the current global logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Trace() *zerolog.Event { return Get().Trace() }
func Debug() *zerolog.Event { return Get().Debug() }
func Info() *zerolog.Event  { return Get().Info() }
func Warn() *zerolog.Event  { return Get().Warn() }
func Error() *zerolog.Event { return Get().Error() }
func Fatal() *zerolog.Event { return Get().Fatal() }

// With returns a child logger context seeded from the global logger, for
// call sites that want to attach fixed fields (e.g. task_id) to every
// subsequent log line.
func With() zerolog.Context { return Get().With() }
