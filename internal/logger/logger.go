package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/vuln-analyzer/internal/config"
)

// EnvLevel overrides the configured log level.
const EnvLevel = "VULN_ANALYZER_LOG_LEVEL"

// New creates an hclog.Logger from the configuration. Output goes to stderr
// so stdout carries only reports.
func New(cfg config.Config, name string, verbose bool) hclog.Logger {
	return NewWithOutput(cfg, name, verbose, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.Config, name string, verbose bool, out io.Writer) hclog.Logger {
	level := determineLogLevel(cfg)
	if verbose && level > hclog.Debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     true,
		JSONFormat:      cfg.Logger.JSONFormat,
		IncludeLocation: cfg.Logger.IncludeLocation,
		Output:          out,
		Level:           level,
	})
}

// determineLogLevel returns the level from the environment, then the
// configuration, defaulting to INFO.
func determineLogLevel(cfg config.Config) hclog.Level {
	if v := os.Getenv(EnvLevel); v != "" {
		return parseLogLevel(v)
	}
	return parseLogLevel(cfg.Logger.Level)
}

func parseLogLevel(s string) hclog.Level {
	if s == "" {
		return hclog.Info
	}
	level := hclog.LevelFromString(strings.ToLower(s))
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}
