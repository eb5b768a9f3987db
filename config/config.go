package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docqa tool.
type Config struct {
	Documents DocumentsConfig `yaml:"documents"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DocumentsConfig describes where source documents come from.
type DocumentsConfig struct {
	Dir      string   `yaml:"dir"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkingConfig configures document segmentation.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"` // characters per chunk
	Overlap   int `yaml:"overlap"`    // characters shared between neighbors
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "local"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"` // local provider only
}

// StoreConfig locates the persisted index artifacts.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int  `yaml:"top_k"`
	CacheEnabled bool `yaml:"cache_enabled"`
	CacheSize    int  `yaml:"cache_size"`
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Dir:      "docs",
			Includes: []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1200,
			Overlap:   200,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 256,
		},
		Store: StoreConfig{
			Dir: "data",
		},
		Retrieve: RetrieveConfig{
			TopK:         5,
			CacheEnabled: true,
			CacheSize:    100,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
