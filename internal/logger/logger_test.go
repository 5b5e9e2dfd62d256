package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/dshills/vuln-analyzer/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want hclog.Level
	}{
		{"", hclog.Info},
		{"trace", hclog.Trace},
		{"DEBUG", hclog.Debug},
		{"warn", hclog.Warn},
		{"error", hclog.Error},
		{"nonsense", hclog.Info},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestDetermineLogLevel_EnvWins(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	cfg := config.Default()
	cfg.Logger.Level = "debug"
	assert.Equal(t, hclog.Error, determineLogLevel(cfg))
}

func TestNewWithOutput_VerboseForcesDebug(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logger.Level = "warn"

	log := NewWithOutput(cfg, "vuln-analyzer", true, &buf)
	log.Debug("chunk analyzed", "path", "a.c", "chunk", 1)

	out := buf.String()
	assert.Contains(t, out, "chunk analyzed")
	assert.Contains(t, out, "path=a.c")
	assert.False(t, strings.HasPrefix(out, "20"), "timestamps should be disabled")
}

func TestNewWithOutput_RespectsLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logger.Level = "warn"

	log := NewWithOutput(cfg, "vuln-analyzer", false, &buf)
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithOutput_JSON(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logger.JSONFormat = true

	NewWithOutput(cfg, "vuln-analyzer", false, &buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"@message":"hello"`)
}
