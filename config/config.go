package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the document QA system.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Split        SplitConfig        `yaml:"split"`
	Index        IndexConfig        `yaml:"index"`
	Conversation ConversationConfig `yaml:"conversation"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	LLM          LLMConfig          `yaml:"llm"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IngestConfig holds document ingestion configuration.
type IngestConfig struct {
	// Accept lists doublestar patterns a source file name must match.
	Accept    []string `yaml:"accept"`
	UploadDir string   `yaml:"upload_dir"`
}

// SplitConfig holds chunk splitting configuration.
type SplitConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// IndexConfig holds retrieval index configuration.
type IndexConfig struct {
	TopK         int `yaml:"top_k"`
	CacheSize    int `yaml:"cache_size"`
	CacheTTLSecs int `yaml:"cache_ttl_secs"`
}

// ConversationConfig holds per-session history configuration.
type ConversationConfig struct {
	MaxHistory int `yaml:"max_history"`
	MaxAgeSecs int `yaml:"max_age_secs"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"`
}

// LLMConfig holds generation provider configuration.
type LLMConfig struct {
	Provider            string   `yaml:"provider"` // "ollama", "openai"
	Model               string   `yaml:"model"`
	BaseURL             string   `yaml:"base_url"`
	APIKeyEnv           string   `yaml:"api_key_env"`
	TimeoutSecs         int      `yaml:"timeout_secs"`
	ChainOfThought      bool     `yaml:"chain_of_thought"`
	ChainOfThoughtSteps []string `yaml:"chain_of_thought_steps"`
	ExamplePrompts      []string `yaml:"example_prompts"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Ingest: IngestConfig{
			Accept:    []string{"*.pdf", "*.txt", "*.md", "*.markdown"},
			UploadDir: "uploads",
		},
		Split: SplitConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Index: IndexConfig{
			TopK:         3,
			CacheSize:    100,
			CacheTTLSecs: 3600,
		},
		Conversation: ConversationConfig{
			MaxHistory: 10,
			MaxAgeSecs: 3600,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 768,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "mistral",
			BaseURL:     "http://localhost:11434",
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 120,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
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

	path = filepath.Join(dir, ".docqa", "config.yaml")
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

// CacheTTL returns the query cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Index.CacheTTLSecs) * time.Second
}

// SessionMaxAge returns the conversation prune threshold as a duration.
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Conversation.MaxAgeSecs) * time.Second
}

// GenerationTimeout returns the generation call timeout as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

// IndexDir returns the directory holding the serialized vector index.
func IndexDir(dataDir string) string {
	return filepath.Join(dataDir, "index")
}

// RegistryPath returns the path of the document registry database.
func RegistryPath(dataDir string) string {
	return filepath.Join(dataDir, "registry.db")
}

// LastSourcePath returns the path of the last-ingested pointer file.
func LastSourcePath(dataDir string) string {
	return filepath.Join(dataDir, "last_source")
}

// UploadDir returns the directory uploads are saved under.
func UploadDir(dataDir string, c *Config) string {
	if filepath.IsAbs(c.Ingest.UploadDir) {
		return c.Ingest.UploadDir
	}
	return filepath.Join(dataDir, c.Ingest.UploadDir)
}

// EnsureDataDir creates the data directory tree.
func EnsureDataDir(dataDir string, c *Config) error {
	if err := os.MkdirAll(IndexDir(dataDir), 0755); err != nil {
		return err
	}
	return os.MkdirAll(UploadDir(dataDir, c), 0755)
}
