// Package logging provides structured logging for hookkit via zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Defaults to info.
	Level string `toml:"level" yaml:"level"`

	// Format is "console" or "json". Defaults to console.
	Format string `toml:"format" yaml:"format"`

	// File, when set, receives logs through a rotating writer instead of stderr.
	File string `toml:"file" yaml:"file"`

	// Rotation limits for File.
	MaxSizeMB  int `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int `toml:"max_age_days" yaml:"max_age_days"`

	// Output overrides the destination. Used by tests.
	Output io.Writer `toml:"-" yaml:"-"`
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// Logger wraps zerolog.Logger.
type Logger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	var (
		out    io.Writer
		closer io.Closer
	)

	switch {
	case cfg.Output != nil:
		out = cfg.Output
	case cfg.File != "":
		rot := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    positive(cfg.MaxSizeMB, 50),
			MaxBackups: positive(cfg.MaxBackups, 3),
			MaxAge:     positive(cfg.MaxAgeDays, 7),
		}
		out = rot
		closer = rot
	default:
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") && cfg.File == "" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: cfg.Output != nil}
	}

	zl := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{zl: zl, closer: closer}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithComponent returns a child logger tagged with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger(), closer: l.closer}
}

// Debug returns a debug event.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info returns an info event.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn returns a warn event.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error returns an error event.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Close flushes and closes the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
