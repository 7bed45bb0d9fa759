package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds runtime tuning loaded from the config file
type Config struct {
	DatabasePath    string
	TickInterval    time.Duration
	ProgressStep    int
	ResponseLatency time.Duration
	Seed            int64 // 0 seeds from the clock
}

// fileConfig is the on-disk shape. Durations are strings such as "300ms".
type fileConfig struct {
	DatabasePath    string `yaml:"database_path" toml:"database_path"`
	TickInterval    string `yaml:"tick_interval" toml:"tick_interval"`
	ProgressStep    int    `yaml:"progress_step" toml:"progress_step"`
	ResponseLatency string `yaml:"response_latency" toml:"response_latency"`
	Seed            int64  `yaml:"seed" toml:"seed"`
}

// DefaultDataDir returns ~/.llm-studio
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".llm-studio"), nil
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	cfg := Config{
		TickInterval:    DefaultTickInterval,
		ProgressStep:    DefaultProgressStep,
		ResponseLatency: DefaultResponseLatency,
	}
	if dir, err := DefaultDataDir(); err == nil {
		cfg.DatabasePath = filepath.Join(dir, "studio.db")
	} else {
		cfg.DatabasePath = "studio.db"
	}
	return cfg
}

// FindConfigFile returns the first of config.yaml, config.yml and
// config.toml present in dir, or "" if there is none
func FindConfigFile(dir string) string {
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig reads path over the defaults. The format follows the file
// extension; a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		LogDebug("Config file %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return cfg, &ParseError{Source: "config", Key: path, Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, &ParseError{Source: "config", Key: path, Err: err}
		}
	default:
		return cfg, &ParseError{Source: "config", Key: path, Err: fmt.Errorf("unsupported config format %q", filepath.Ext(path))}
	}

	if err := raw.apply(&cfg); err != nil {
		return cfg, &ParseError{Source: "config", Key: path, Err: err}
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) error {
	if f.DatabasePath != "" {
		cfg.DatabasePath = expandHome(f.DatabasePath)
	}
	if f.TickInterval != "" {
		d, err := parsePositiveDuration("tick_interval", f.TickInterval)
		if err != nil {
			return err
		}
		cfg.TickInterval = d
	}
	if f.ResponseLatency != "" {
		d, err := parsePositiveDuration("response_latency", f.ResponseLatency)
		if err != nil {
			return err
		}
		cfg.ResponseLatency = d
	}
	if f.ProgressStep < 0 || f.ProgressStep > 100 {
		return fmt.Errorf("progress_step must be between 1 and 100, got %d", f.ProgressStep)
	}
	if f.ProgressStep != 0 {
		cfg.ProgressStep = f.ProgressStep
	}
	cfg.Seed = f.Seed
	return nil
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return d, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
