// Package config loads and persists gsf configuration: analysis budgets,
// cache settings, and output preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tdinh-labs/go-sign-flow/pkg/analysis"
)

// Config holds all configuration for go-sign-flow.
type Config struct {
	// Analysis budgets
	MaxSteps           int           `yaml:"max_steps" env:"GSF_MAX_STEPS"`
	Timeout            time.Duration `yaml:"timeout" env:"GSF_TIMEOUT"`
	MaxStatesPerPoint  int           `yaml:"max_states_per_point" env:"GSF_MAX_STATES_PER_POINT"`
	MaxBlockIterations int           `yaml:"max_block_iterations" env:"GSF_MAX_BLOCK_ITERATIONS"`
	MaxCallDepth       int           `yaml:"max_call_depth" env:"GSF_MAX_CALL_DEPTH"`

	// Summary cache
	CacheEnabled bool   `yaml:"cache_enabled" env:"GSF_CACHE_ENABLED"`
	CachePath    string `yaml:"cache_path" env:"GSF_CACHE_PATH"`
	CacheSize    int    `yaml:"cache_size" env:"GSF_CACHE_SIZE"`

	// Output
	JSONOutput bool `yaml:"json_output" env:"GSF_JSON_OUTPUT"`
	Verbose    bool `yaml:"verbose" env:"GSF_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	limits := analysis.DefaultLimits()
	return &Config{
		MaxSteps:           limits.MaxSteps,
		Timeout:            limits.Timeout,
		MaxStatesPerPoint:  limits.MaxStatesPerPoint,
		MaxBlockIterations: limits.MaxBlockIterations,
		MaxCallDepth:       limits.MaxCallDepth,
		CacheEnabled:       true,
		CachePath:          defaultCachePath(),
		CacheSize:          1024,
		JSONOutput:         false,
		Verbose:            false,
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gsf-cache.msgpack"
	}
	return filepath.Join(home, ".gsf", "summaries.msgpack")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gsf.yaml"
	}
	return filepath.Join(home, ".gsf", "config.yaml")
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations that would make the analysis unsound or
// never terminate.
func (c *Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be >= 0, got %d", c.MaxSteps)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.MaxStatesPerPoint < 0 {
		return fmt.Errorf("max_states_per_point must be >= 0, got %d", c.MaxStatesPerPoint)
	}
	if c.MaxBlockIterations < 0 {
		return fmt.Errorf("max_block_iterations must be >= 0, got %d", c.MaxBlockIterations)
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must be >= 0, got %d", c.MaxCallDepth)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize)
	}
	return nil
}

// Limits converts the budget settings into analysis limits.
func (c *Config) Limits() analysis.Limits {
	return analysis.Limits{
		MaxSteps:           c.MaxSteps,
		Timeout:            c.Timeout,
		MaxStatesPerPoint:  c.MaxStatesPerPoint,
		MaxBlockIterations: c.MaxBlockIterations,
		MaxCallDepth:       c.MaxCallDepth,
	}
}

// applyEnv overrides fields from GSF_* environment variables.
func (c *Config) applyEnv() {
	if v, ok := envInt("GSF_MAX_STEPS"); ok {
		c.MaxSteps = v
	}
	if v := os.Getenv("GSF_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v, ok := envInt("GSF_MAX_STATES_PER_POINT"); ok {
		c.MaxStatesPerPoint = v
	}
	if v, ok := envInt("GSF_MAX_BLOCK_ITERATIONS"); ok {
		c.MaxBlockIterations = v
	}
	if v, ok := envInt("GSF_MAX_CALL_DEPTH"); ok {
		c.MaxCallDepth = v
	}
	if v, ok := envBool("GSF_CACHE_ENABLED"); ok {
		c.CacheEnabled = v
	}
	if v := os.Getenv("GSF_CACHE_PATH"); v != "" {
		c.CachePath = v
	}
	if v, ok := envInt("GSF_CACHE_SIZE"); ok {
		c.CacheSize = v
	}
	if v, ok := envBool("GSF_JSON_OUTPUT"); ok {
		c.JSONOutput = v
	}
	if v, ok := envBool("GSF_VERBOSE"); ok {
		c.Verbose = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
