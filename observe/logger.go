package observe

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

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
		return "info"
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

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug|info|warn|error
	Format  string `yaml:"format"` // json|console
	Caller  bool   `yaml:"caller"`

	File FileConfig `yaml:"file"`
}

// FileConfig configures an additional rotating log file.
type FileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// zeroLogger is the zerolog backed Logger implementation.
type zeroLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a structured logger writing to stderr and, when
// configured, to a rotating file. The file stays open for the life of the
// process; an Observer closes it on Shutdown.
func NewLogger(cfg LoggingConfig) Logger {
	logger, _ := newLogger(cfg)
	return logger
}

// newLogger returns the logger and the rotating file sink, or a nil closer
// when file output is off.
func newLogger(cfg LoggingConfig) (Logger, io.Closer) {
	var writers []io.Writer
	var file *lumberjack.Logger

	if cfg.Format == "console" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.File.Enabled && strings.TrimSpace(cfg.File.Path) != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   cfg.File.Compress,
		}
		writers = append(writers, file)
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	logger := newZeroLogger(ParseLogLevel(cfg.Level), w, cfg.Caller)
	if file == nil {
		return logger, nil
	}
	return logger, file
}

// NewLoggerWithWriter creates a JSON logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return newZeroLogger(ParseLogLevel(level), w, false)
}

func newZeroLogger(level LogLevel, w io.Writer, caller bool) *zeroLogger {
	zctx := zerolog.New(w).Level(level.zerologLevel()).With().Timestamp()
	if caller {
		// Skip the Info/Warn/... wrapper and log().
		zctx = zctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2)
	}
	return &zeroLogger{zl: zctx.Logger()}
}

// With returns a logger with fields attached to every event.
func (l *zeroLogger) With(fields ...Field) Logger {
	zctx := l.zl.With()
	for _, f := range fields {
		if isRedactedField(f.Key) {
			zctx = zctx.Str(f.Key, redactedValue)
			continue
		}
		switch v := f.Value.(type) {
		case error:
			zctx = zctx.AnErr(f.Key, v)
		case string:
			zctx = zctx.Str(f.Key, v)
		default:
			zctx = zctx.Interface(f.Key, v)
		}
	}
	return &zeroLogger{zl: zctx.Logger()}
}

func (l *zeroLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, l.zl.Info(), msg, fields)
}

func (l *zeroLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, l.zl.Warn(), msg, fields)
}

func (l *zeroLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, l.zl.Error(), msg, fields)
}

func (l *zeroLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, l.zl.Debug(), msg, fields)
}

func (l *zeroLogger) log(ctx context.Context, ev *zerolog.Event, msg string, fields []Field) {
	// Filtered by level
	if ev == nil {
		return
	}

	for _, f := range fields {
		if isRedactedField(f.Key) {
			ev.Str(f.Key, redactedValue)
			continue
		}
		switch v := f.Value.(type) {
		case error:
			ev.AnErr(f.Key, v)
		case string:
			ev.Str(f.Key, v)
		default:
			ev.Interface(f.Key, v)
		}
	}

	if ctx != nil {
		ev = ev.Ctx(ctx)
	}
	ev.Msg(msg)
}

const redactedValue = "[REDACTED]"

var redactedKeys = func() map[string]bool {
	m := make(map[string]bool, len(RedactedFields))
	for _, k := range RedactedFields {
		m[k] = true
	}
	return m
}()

// isRedactedField returns true if the field should be redacted.
func isRedactedField(key string) bool {
	return redactedKeys[key]
}

var _ Logger = (*zeroLogger)(nil)
