// Package logging provides the plugin's channel logger: structured slog
// output (tint for humans, JSON for machines) plus {placeholder}
// interpolation of the message from its attributes.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// DefaultChannel is the channel used when Options.Channel is empty.
const DefaultChannel = "simple-lms"

// Options configures New.
type Options struct {
	Level   string    // debug | info | warn | error
	Handler string    // text | json
	Channel string    // attached to every record as "channel"
	Writer  io.Writer // defaults to os.Stderr
}

// Logger writes records for one channel.
type Logger struct {
	slog    *slog.Logger
	channel string
}

// ParseLevel maps a level name to slog.Level, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a Logger from opts.
func New(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	channel := opts.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	switch opts.Handler {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    w != os.Stderr && w != os.Stdout,
		})
	}

	return &Logger{
		slog:    slog.New(handler).With(slog.String("channel", channel)),
		channel: channel,
	}
}

// Channel returns the logger's channel name.
func (l *Logger) Channel() string { return l.channel }

// Slog returns the underlying *slog.Logger, already tagged with the channel.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Log writes message at level. args are slog key/value pairs; every
// {key} in message is replaced by the matching value.
//
//	logger.Log(ctx, slog.LevelInfo, "deleted {count} events", "count", 12)
func (l *Logger) Log(ctx context.Context, level slog.Level, message string, args ...any) {
	l.slog.Log(ctx, level, Interpolate(message, args...), args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.Log(context.Background(), slog.LevelDebug, message, args...)
}

func (l *Logger) Info(message string, args ...any) {
	l.Log(context.Background(), slog.LevelInfo, message, args...)
}

func (l *Logger) Warning(message string, args ...any) {
	l.Log(context.Background(), slog.LevelWarn, message, args...)
}

func (l *Logger) Error(message string, args ...any) {
	l.Log(context.Background(), slog.LevelError, message, args...)
}

// Interpolate replaces {key} placeholders in message with values taken from
// key/value pairs or slog.Attr arguments. Unknown placeholders are kept.
func Interpolate(message string, args ...any) string {
	if !strings.Contains(message, "{") || len(args) == 0 {
		return message
	}

	pairs := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			pairs = append(pairs, "{"+a.Key+"}", a.Value.String())
		case string:
			if i+1 < len(args) {
				pairs = append(pairs, "{"+a+"}", fmt.Sprint(args[i+1]))
				i++
			}
		}
	}
	return strings.NewReplacer(pairs...).Replace(message)
}
