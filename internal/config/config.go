package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInputDir       = "Input Subtitles"
	DefaultOutputDir      = "Output Subtitles"
	DefaultSuffix         = "_heb"
	DefaultTargetLanguage = "Hebrew"
	DefaultProvider       = "bedrock"
	DefaultRegion         = "us-east-1"
	DefaultChunkTokens    = 2000
	DefaultMaxTokens      = 2000
	DefaultTemperature    = 0.7
	DefaultTimeoutSeconds = 300
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths" toml:"paths"`
	Chunking    ChunkingConfig    `yaml:"chunking" toml:"chunking"`
	Translation TranslationConfig `yaml:"translation" toml:"translation"`
}

type PathsConfig struct {
	Input      string   `yaml:"input" toml:"input"`
	Output     string   `yaml:"output" toml:"output"`
	Extensions []string `yaml:"extensions" toml:"extensions"`
	Suffix     string   `yaml:"suffix" toml:"suffix"`
}

type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens" toml:"max_tokens"`
}

type TranslationConfig struct {
	Provider       string   `yaml:"provider" toml:"provider"`
	Model          string   `yaml:"model" toml:"model"`
	Region         string   `yaml:"region" toml:"region"`
	TargetLanguage string   `yaml:"target_language" toml:"target_language"`
	MaxTokens      int      `yaml:"max_tokens" toml:"max_tokens"`
	Temperature    *float64 `yaml:"temperature" toml:"temperature"`
	TimeoutSeconds int      `yaml:"timeout_seconds" toml:"timeout_seconds"`
	BaseURL        string   `yaml:"base_url" toml:"base_url"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads a config file and applies defaults. Files ending in .toml are
// parsed as TOML, anything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate fills unset fields with defaults and rejects values that can
// never work.
func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		c.Paths.Input = DefaultInputDir
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutputDir
	}
	if len(c.Paths.Extensions) == 0 {
		c.Paths.Extensions = []string{".srt"}
	}
	c.Paths.Extensions = normalizeExtensions(c.Paths.Extensions)
	if c.Paths.Suffix == "" {
		c.Paths.Suffix = DefaultSuffix
	}

	if c.Chunking.MaxTokens == 0 {
		c.Chunking.MaxTokens = DefaultChunkTokens
	}

	if c.Translation.Provider == "" {
		c.Translation.Provider = DefaultProvider
	}
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	if c.Translation.Region == "" {
		c.Translation.Region = DefaultRegion
	}
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = DefaultTargetLanguage
	}
	if c.Translation.MaxTokens == 0 {
		c.Translation.MaxTokens = DefaultMaxTokens
	}
	if c.Translation.Temperature == nil {
		t := DefaultTemperature
		c.Translation.Temperature = &t
	}
	if c.Translation.TimeoutSeconds == 0 {
		c.Translation.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if c.Chunking.MaxTokens < 0 {
		return fmt.Errorf("chunking.max_tokens must be positive, got %d", c.Chunking.MaxTokens)
	}
	if c.Translation.MaxTokens < 0 {
		return fmt.Errorf("translation.max_tokens must be positive, got %d", c.Translation.MaxTokens)
	}
	if t := *c.Translation.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("translation.temperature must be between 0 and 2, got %g", t)
	}
	if c.Translation.TimeoutSeconds < 0 {
		return fmt.Errorf("translation.timeout_seconds must be positive, got %d", c.Translation.TimeoutSeconds)
	}

	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
