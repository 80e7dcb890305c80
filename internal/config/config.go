// Package config holds groundwork configuration, loaded from
// .groundwork/config.yaml with environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all groundwork configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	LLM     LLMConfig     `yaml:"llm"`
	Memory  MemoryConfig  `yaml:"memory"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the generation adapter.
type LLMConfig struct {
	Provider string `yaml:"provider"` // genai, mock
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// MemoryConfig configures the workspace store and search.
type MemoryConfig struct {
	SearchLimit int `yaml:"search_limit"` // Default hit cap for searches
}

// IngestConfig configures source ingestion.
type IngestConfig struct {
	FetchTimeout string `yaml:"fetch_timeout"` // Per-URL fetch timeout
	MaxParallel  int    `yaml:"max_parallel"`  // Concurrent URL fetches
	WatchDir     string `yaml:"watch_dir"`     // Drop directory for ingest watch
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "groundwork",
		Version: "1.0",
		LLM: LLMConfig{
			Provider: "genai",
			Model:    "gemini-2.0-flash",
			Timeout:  "120s",
		},
		Memory: MemoryConfig{
			SearchLimit: 10,
		},
		Ingest: IngestConfig{
			FetchTimeout: "30s",
			MaxParallel:  4,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Path returns the config file location under a workspace root.
func Path(root string) string {
	return filepath.Join(root, ".groundwork", "config.yaml")
}

// Load reads config from the given path, applying defaults for missing
// fields and environment overrides for API keys.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values so
// secrets never need to live on disk.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if model := os.Getenv("GROUNDWORK_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
}
