package config

import (
	"log/slog"

	"git.home.luguber.info/inful/docpost/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("logging.level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel converts the level for slog.HandlerOptions.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("logging.format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// FormatterKind selects the page formatter.
type FormatterKind string

const (
	FormatterWhitespace FormatterKind = "whitespace"
	FormatterNone       FormatterKind = "none"
)

var formatterNormalizer = normalization.NewNormalizer("build.format", map[string]FormatterKind{
	"whitespace": FormatterWhitespace,
	"none":       FormatterNone,
}, FormatterWhitespace)

// normalize canonicalizes enum fields, rejecting unknown values.
func (c *Config) normalize() error {
	var err error
	if c.Logging.Level, err = logLevelNormalizer.NormalizeWithError(string(c.Logging.Level)); err != nil {
		return err
	}
	if c.Logging.Format, err = logFormatNormalizer.NormalizeWithError(string(c.Logging.Format)); err != nil {
		return err
	}
	if c.Build.Format, err = formatterNormalizer.NormalizeWithError(string(c.Build.Format)); err != nil {
		return err
	}
	return nil
}
