// Package config provides configuration loading and structs for the ingestion pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug" toml:"debug"`
	Ingestion  IngestionConfig  `yaml:"ingestion" toml:"ingestion"`
	Cache      CacheConfig      `yaml:"cache" toml:"cache"`
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Extraction ExtractionConfig `yaml:"extraction" toml:"extraction"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Batch      BatchConfig      `yaml:"batch" toml:"batch"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Watch      WatchConfig      `yaml:"watch" toml:"watch"`
}

// IngestionConfig limits what the loader accepts.
type IngestionConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb" toml:"max_file_size_mb" validate:"gt=0"`
}

// CacheConfig controls the content-addressed extraction cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir" toml:"dir" validate:"required_if=Enabled true"`
	Backend string `yaml:"backend" toml:"backend" validate:"oneof=disk sqlite"`
}

// ValidationConfig enumerates the hard requirements a record must meet.
type ValidationConfig struct {
	RequireEmail      bool `yaml:"require_email" toml:"require_email"`
	RequirePhone      bool `yaml:"require_phone" toml:"require_phone"`
	RequireExperience bool `yaml:"require_experience" toml:"require_experience"`
	RequireEducation  bool `yaml:"require_education" toml:"require_education"`
	MinSkillsCount    int  `yaml:"min_skills_count" toml:"min_skills_count" validate:"gte=0"`
}

// ExtractionConfig toggles optional extraction families and phone parsing.
type ExtractionConfig struct {
	Certifications bool   `yaml:"certifications" toml:"certifications"`
	Projects       bool   `yaml:"projects" toml:"projects"`
	Languages      bool   `yaml:"languages" toml:"languages"`
	DefaultRegion  string `yaml:"default_region" toml:"default_region" validate:"len=2"`
}

// OutputConfig shapes the canonical record.
type OutputConfig struct {
	IncludeRawText  bool `yaml:"include_raw_text" toml:"include_raw_text"`
	TruncateRawText int  `yaml:"truncate_raw_text" toml:"truncate_raw_text" validate:"gte=0"`
}

// BatchConfig holds batch sizing and worker pool settings.
type BatchConfig struct {
	BatchSize             int  `yaml:"batch_size" toml:"batch_size" validate:"gt=0"`
	EnableMultiprocessing bool `yaml:"enable_multiprocessing" toml:"enable_multiprocessing"`
	MaxWorkers            int  `yaml:"max_workers" toml:"max_workers" validate:"gt=0"`
}

// Workers returns the pool size implied by the batch settings.
func (b BatchConfig) Workers() int {
	if !b.EnableMultiprocessing || b.MaxWorkers < 1 {
		return 1
	}
	return b.MaxWorkers
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port" validate:"gte=0,lte=65535"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories" toml:"directories"`
	OutputDir   string   `yaml:"output_dir" toml:"output_dir"`
	Recursive   *bool    `yaml:"recursive" toml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

var validate = validator.New()

// Load reads and parses the config file at path, applies defaults and
// INGESTION_* environment overrides, expands paths and validates the result.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(cfg)
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir, configDir)
	cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a config from defaults and INGESTION_* variables only.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes the config to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" is the home directory; other relative paths are left as-is.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
