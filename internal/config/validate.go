package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Validate checks that every setting is usable. All problems are reported
// together.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"tokens", c.Tokens},
		{"threads", c.Threads},
		{"ctx", c.Ctx},
		{"chunkWords", c.ChunkWords},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive integer, got %d", p.name, p.v))
		}
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.Temperature < 0 {
		errs = append(errs, fmt.Errorf("temperature must not be negative, got %g", c.Temperature))
	}
	if c.RepeatPenalty < 0 {
		errs = append(errs, fmt.Errorf("repeatPenalty must not be negative, got %g", c.RepeatPenalty))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model must be set"))
	}
	errs = appendEnum(errs, "backend", c.Backend, Backends)
	errs = appendEnum(errs, "mode", c.Mode, Modes)
	errs = appendEnum(errs, "format", c.Format, Formats)
	errs = appendEnum(errs, "estimator", c.Estimator, Estimators)
	errs = appendEnum(errs, "anchor", c.Anchor, Anchors)
	errs = appendEnum(errs, "logger.level", c.Logger.Level, LogLevels)
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func appendEnum(errs []error, name, v string, allowed []string) []error {
	if !slices.Contains(allowed, v) {
		return append(errs, fmt.Errorf("unknown %s %q (valid: %v)", name, v, allowed))
	}
	return errs
}

// TimeoutDuration parses the per-call timeout. Empty means no timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return d, nil
}
