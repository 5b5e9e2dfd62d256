package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

const appName = "vuln-analyzer"

// Config represents the vuln-analyzer configuration.
type Config struct {
	Backend       string       `yaml:"backend"`
	Host          string       `yaml:"host,omitempty"`
	Model         string       `yaml:"model"`
	Mode          string       `yaml:"mode"`
	Tokens        int          `yaml:"tokens"`
	Threads       int          `yaml:"threads"`
	Ctx           int          `yaml:"ctx"`
	ChunkWords    int          `yaml:"chunkWords"`
	Estimator     string       `yaml:"estimator"`
	Temperature   float64      `yaml:"temperature"`
	RepeatPenalty float64      `yaml:"repeatPenalty"`
	Stop          []string     `yaml:"stop,omitempty"`
	Format        string       `yaml:"format"`
	Anchor        string       `yaml:"anchor"`
	NumberLines   *bool        `yaml:"numberLines,omitempty"`
	RulesFile     string       `yaml:"rulesFile,omitempty"`
	Retries       int          `yaml:"retries"`
	Timeout       string       `yaml:"timeout,omitempty"`
	Cache         CacheConfig  `yaml:"cache"`
	Logger        LoggerConfig `yaml:"logger"`
}

// CacheConfig controls the per-run response cache.
type CacheConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// LoggerConfig controls diagnostic logging.
type LoggerConfig struct {
	Level           string `yaml:"level"`
	JSONFormat      bool   `yaml:"jsonFormat,omitempty"`
	IncludeLocation bool   `yaml:"includeLocation,omitempty"`
}

// Accepted enum values.
var (
	Backends   = []string{"ollama", "llamacpp"}
	Modes      = []string{"auto", "chat", "completion"}
	Formats    = []string{"text", "json", "markdown", "sarif"}
	Estimators = []string{"words", "chars"}
	Anchors    = []string{"first", "each"}
	LogLevels  = []string{"trace", "debug", "info", "warn", "error"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Backend:       "llamacpp",
		Model:         "models/phi-4-Q4_1.gguf",
		Mode:          "auto",
		Tokens:        512,
		Threads:       8,
		Ctx:           4096,
		ChunkWords:    1000,
		Estimator:     "words",
		Temperature:   0.1,
		RepeatPenalty: 1.1,
		Stop:          []string{"###"},
		Format:        "text",
		Anchor:        "first",
		NumberLines:   boolPtr(true),
		Retries:       2,
		Cache:         CacheConfig{Enabled: boolPtr(true)},
		Logger:        LoggerConfig{Level: "info"},
	}
}

func boolPtr(b bool) *bool { return &b }

// NumberLinesEnabled reports whether prompt code lines carry line numbers.
func (c Config) NumberLinesEnabled() bool {
	return c.NumberLines == nil || *c.NumberLines
}

// CacheEnabled reports whether the response cache is on.
func (c Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from path, or from the default location when path is
// empty. A missing default file yields a zero Config and nil error; a missing
// explicit file is an error.
func LoadFile(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only flags the user set should appear).
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSaved returns the defaults merged with the user config file, without
// environment or flag overrides.
func LoadSaved() (Config, error) {
	cfg := Default()
	fileCfg, err := LoadFile("")
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Backend != "" {
		dst.Backend = src.Backend
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if src.Tokens != 0 {
		dst.Tokens = src.Tokens
	}
	if src.Threads != 0 {
		dst.Threads = src.Threads
	}
	if src.Ctx != 0 {
		dst.Ctx = src.Ctx
	}
	if src.ChunkWords != 0 {
		dst.ChunkWords = src.ChunkWords
	}
	if src.Estimator != "" {
		dst.Estimator = src.Estimator
	}
	if src.Temperature != 0 {
		dst.Temperature = src.Temperature
	}
	if src.RepeatPenalty != 0 {
		dst.RepeatPenalty = src.RepeatPenalty
	}
	if len(src.Stop) > 0 {
		dst.Stop = src.Stop
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Anchor != "" {
		dst.Anchor = src.Anchor
	}
	if src.NumberLines != nil {
		dst.NumberLines = src.NumberLines
	}
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
	if src.Retries != 0 {
		dst.Retries = src.Retries
	}
	if src.Timeout != "" {
		dst.Timeout = src.Timeout
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Logger.Level != "" {
		dst.Logger.Level = src.Logger.Level
	}
	dst.Logger.JSONFormat = dst.Logger.JSONFormat || src.Logger.JSONFormat
	dst.Logger.IncludeLocation = dst.Logger.IncludeLocation || src.Logger.IncludeLocation
}

// envKeys maps environment variables to config keys.
var envKeys = []struct{ env, key string }{
	{"VULN_ANALYZER_BACKEND", "backend"},
	{"VULN_ANALYZER_HOST", "host"},
	{"VULN_ANALYZER_MODEL", "model"},
	{"VULN_ANALYZER_MODE", "mode"},
	{"VULN_ANALYZER_TOKENS", "tokens"},
	{"VULN_ANALYZER_THREADS", "threads"},
	{"VULN_ANALYZER_CTX", "ctx"},
	{"VULN_ANALYZER_CHUNK_WORDS", "chunkWords"},
	{"VULN_ANALYZER_FORMAT", "format"},
	{"VULN_ANALYZER_RULES", "rulesFile"},
	{"VULN_ANALYZER_LOG_LEVEL", "logger.level"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the settable config keys.
var Keys = []string{
	"backend", "host", "model", "mode", "tokens", "threads", "ctx", "chunkWords",
	"estimator", "temperature", "repeatPenalty", "stop", "format", "anchor",
	"numberLines", "rulesFile", "retries", "timeout", "cache.enabled", "logger.level",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "backend":
		cfg.Backend = strings.ToLower(value)
	case "host":
		cfg.Host = value
	case "model":
		cfg.Model = value
	case "mode":
		cfg.Mode = strings.ToLower(value)
	case "tokens":
		return setInt(&cfg.Tokens, key, value)
	case "threads":
		return setInt(&cfg.Threads, key, value)
	case "ctx":
		return setInt(&cfg.Ctx, key, value)
	case "chunkWords":
		return setInt(&cfg.ChunkWords, key, value)
	case "retries":
		return setInt(&cfg.Retries, key, value)
	case "estimator":
		cfg.Estimator = strings.ToLower(value)
	case "temperature":
		return setFloat(&cfg.Temperature, key, value)
	case "repeatPenalty":
		return setFloat(&cfg.RepeatPenalty, key, value)
	case "stop":
		cfg.Stop = splitList(value)
	case "format":
		cfg.Format = strings.ToLower(value)
	case "anchor":
		cfg.Anchor = strings.ToLower(value)
	case "numberLines":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("numberLines must be a boolean: %w", err)
		}
		cfg.NumberLines = &b
	case "rulesFile":
		cfg.RulesFile = value
	case "timeout":
		cfg.Timeout = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = &b
	case "logger.level":
		cfg.Logger.Level = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s must be a number: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
