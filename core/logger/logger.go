// Package logger is the process-wide structured logger.
//
// Calls take a message followed by key/value pairs:
//
//	logger.Error("BookingService:Book:Error", "timeslot_id", id, "error", err)
//
// A value without a key is logged under "arg".
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level      string
	JSONOutput bool
	Output     io.Writer
}

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init replaces the global logger. It is safe to call more than once.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.JSONOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	mu.Lock()
	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
	mu.Unlock()
}

// Get returns the underlying zerolog logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(msg string, args ...any) {
	l := Get()
	write(l.Debug(), msg, args)
}

func Info(msg string, args ...any) {
	l := Get()
	write(l.Info(), msg, args)
}

func Warn(msg string, args ...any) {
	l := Get()
	write(l.Warn(), msg, args)
}

func Error(msg string, args ...any) {
	l := Get()
	write(l.Error(), msg, args)
}

func write(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); {
		key, ok := args[i].(string)
		if !ok || i+1 == len(args) {
			ev = field(ev, "arg", args[i])
			i++
			continue
		}
		ev = field(ev, key, args[i+1])
		i += 2
	}
	ev.Msg(msg)
}

func field(ev *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case error:
		return ev.AnErr(key, v)
	case string:
		return ev.Str(key, v)
	case time.Duration:
		return ev.Dur(key, v)
	default:
		return ev.Interface(key, v)
	}
}
