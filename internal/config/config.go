package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all runtime configuration parameters
type Config struct {
	StartURL         string  `json:"start_url"`
	MaxCount         int     `json:"max_count"`
	OutputDir        string  `json:"output_dir"`
	ObeyRobots       bool    `json:"obey_robots"`
	Slow             bool    `json:"slow"`
	SlowDelayMs      int     `json:"slow_delay_ms"`
	Alpha            float64 `json:"alpha"`
	Passes           int     `json:"passes"`
	RequestTimeoutMs int     `json:"request_timeout_ms"`
	UserAgent        string  `json:"user_agent"`
	DBPath           string  `json:"db_path"`
	MetricsPath      string  `json:"metrics_path"`
}

// Default values applied to unset fields
const (
	DefaultMaxCount         = 10000
	DefaultOutputDir        = "pages"
	DefaultSlowDelayMs      = 1000
	DefaultAlpha            = 0.15
	DefaultPasses           = 50
	DefaultRequestTimeoutMs = 10000
	DefaultUserAgent        = "rank-weaver/1.0"
)

// LoadConfig reads configuration from a JSON file, applies defaults and validates it.
// Overrides run after the file is decoded and before defaults are applied.
func LoadConfig(path string, overrides ...func(*Config)) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(cfg)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readFile decodes a JSON config file; an empty path yields a zero Config
func readFile(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults sets default values for unspecified fields.
// Paths derived from OutputDir are filled in last so an overridden
// output directory carries the database and metrics file along.
func ApplyDefaults(cfg *Config) {
	if cfg.MaxCount == 0 {
		cfg.MaxCount = DefaultMaxCount
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.SlowDelayMs == 0 {
		cfg.SlowDelayMs = DefaultSlowDelayMs
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.Passes == 0 {
		cfg.Passes = DefaultPasses
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.OutputDir, "spider.db")
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = filepath.Join(cfg.OutputDir, "metrics.json")
	}
}

// Validate checks that required fields are present and values are sensible
func Validate(cfg *Config) error {
	if cfg.StartURL == "" {
		return fmt.Errorf("start_url is required")
	}
	if cfg.MaxCount < 1 {
		return fmt.Errorf("max_count must be >= 1")
	}
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1]")
	}
	if cfg.Passes < 1 {
		return fmt.Errorf("passes must be >= 1")
	}
	if cfg.SlowDelayMs < 0 {
		return fmt.Errorf("slow_delay_ms must be >= 0")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	return nil
}
