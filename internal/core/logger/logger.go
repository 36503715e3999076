package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level slog.Level

var (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

var defaultLevel = LevelInfo

func SetDefaultLevel(level Level) {
	defaultLevel = level
}

// ParseLevel maps a config level name to a Level. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

type HandlerOption func(*tint.Options)

func WithTimeFormat(format string) HandlerOption {
	return func(opts *tint.Options) {
		opts.TimeFormat = format
	}
}

func WithNoColor(noColor bool) HandlerOption {
	return func(opts *tint.Options) {
		opts.NoColor = noColor
	}
}

// NewHandlerOptions picks colours and a short time format when w is a
// terminal, and plain RFC3339 output otherwise.
func NewHandlerOptions(w io.Writer, opts ...HandlerOption) *tint.Options {
	isTerminal := false
	if f, ok := w.(*os.File); ok {
		isTerminal = isatty.IsTerminal(f.Fd())
	}
	timeFormat := time.RFC3339
	if isTerminal {
		timeFormat = time.Stamp
	}
	tintOpts := &tint.Options{
		Level:      slog.Level(defaultLevel),
		NoColor:    !isTerminal,
		TimeFormat: timeFormat,
	}
	for _, opt := range opts {
		opt(tintOpts)
	}
	return tintOpts
}

func DefaultHandler(w io.Writer, opts ...HandlerOption) slog.Handler {
	return tint.NewHandler(w, NewHandlerOptions(w, opts...))
}

// RotatingFile returns a writer that appends to path and rotates it once
// it grows past maxSizeMB.
func RotatingFile(path string, maxSizeMB int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

type LoggerOption func(*Logger)

func WithName(name string) LoggerOption {
	return func(l *Logger) {
		l.name = name
	}
}

func WithLevel(level Level) LoggerOption {
	return func(l *Logger) {
		l.level = level
	}
}

func WithHandler(handler slog.Handler) LoggerOption {
	return func(l *Logger) {
		l.handler = handler
	}
}

// WithOutput sends records to w instead of stderr.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.output = w
	}
}

func WithHandlerOptions(opts ...HandlerOption) LoggerOption {
	return func(l *Logger) {
		l.opts = opts
	}
}

// Logger is a named slog logger writing through tint.
type Logger struct {
	*slog.Logger
	level   Level
	handler slog.Handler
	output  io.Writer
	name    string
	opts    []HandlerOption
}

// NewLogger creates a new logger instance
func NewLogger(opts ...LoggerOption) *Logger {
	l := &Logger{
		name:   "airdata",
		level:  defaultLevel,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.handler == nil {
		handlerOpts := append(l.opts, func(tintOpts *tint.Options) {
			tintOpts.Level = slog.Level(l.level)
		})
		l.handler = DefaultHandler(l.output, handlerOpts...)
	}
	l.Logger = slog.New(l.handler).WithGroup(l.name)
	return l
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewLogger(WithHandler(slog.NewTextHandler(io.Discard, nil)))
}

// Named returns a child logger for a component, sharing the handler.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger:  slog.New(l.handler).WithGroup(name),
		level:   l.level,
		handler: l.handler,
		output:  l.output,
		name:    name,
		opts:    l.opts,
	}
}

// With creates a new logger with the given attributes
func (l *Logger) With(args ...any) *slog.Logger {
	return l.Logger.With(args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
