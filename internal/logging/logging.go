// Package logging provides structured logging handler construction for use
// with log/slog, plus cobra/pflag flag registration so every q2c subcommand
// exposes the same --log-level/--log-format surface without repeating the
// wiring.
//
// Adapted from MacroPower-x/log: the same Format/level-string-to-slog.Level
// mapping and pflag.FlagSet registration idiom, trimmed to this module's
// needs (no Publisher fan-out, since nothing here drives a TUI subscriber).
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format is the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// GetLevel parses a log level string into a slog.Level.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
	}
}

// GetFormat parses a log format string into a Format.
func GetFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
	}
}

// CreateHandler builds a slog.Handler writing to w at the given level and
// format.
func CreateHandler(w io.Writer, lvl slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Config holds the CLI flag values backing logger construction. Zero value
// is usable; call RegisterFlags before cobra parses args, then NewHandler
// once flags are populated.
type Config struct {
	Level  string
	Format string
}

// NewConfig returns a Config with the defaults q2c starts every invocation
// with absent any flags.
func NewConfig() *Config {
	return &Config{Level: "info", Format: "text"}
}

// RegisterFlags adds --log-level/--log-format to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, "log-level", c.Level, "log level: error, warn, info, debug")
	flags.StringVar(&c.Format, "log-format", c.Format, "log format: text, json")
}

// NewHandler builds the slog.Handler described by c, writing to w.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	lvl, err := GetLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := GetFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return CreateHandler(w, lvl, format), nil
}
