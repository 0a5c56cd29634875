package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config selects level, encoding and destination of a Logger. Empty
// fields fall back to info, json and stderr.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// NewLogger builds a Logger from cfg. A nil cfg gives the defaults.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("logging: opening output %q: %w", cfg.Output, err)
	}
	return NewWithFormat(level, format, out), nil
}

// ParseLevel accepts debug, info, warn (or warning), error and fatal in any
// case. The empty string means info.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("logging: unknown level %q", s)
}

// ParseFormat accepts json and text; console is an alias for text. The
// empty string means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSONFormat, nil
	case "text", "console":
		return TextFormat, nil
	}
	return JSONFormat, fmt.Errorf("logging: unknown format %q", s)
}

// openOutput resolves stdout, stderr and discard; anything else is a file
// opened for appending.
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
