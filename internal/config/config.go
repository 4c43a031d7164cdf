package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"call-copilot/internal/models"
)

// LLMConfig selects and configures one provider endpoint (generation
// or embedding).
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Key resolves the credential, preferring the inline value over the
// named environment variable.
func (c *LLMConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// ChromemConfig configures the embedded chromem-go store.
type ChromemConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// PostgresConfig configures the pgvector-backed store.
type PostgresConfig struct {
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	VectorSize int    `yaml:"vector_size"`
	Debug      bool   `yaml:"debug"`
}

// StoreConfig selects the retrieval index backend.
type StoreConfig struct {
	Backend  string         `yaml:"backend"`
	Chromem  ChromemConfig  `yaml:"chromem"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SegmenterConfig configures transcript windowing.
type SegmenterConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// Config is the root application configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Store     StoreConfig     `yaml:"store"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Embedding LLMConfig       `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
}

// Load reads the yaml config at path, after loading a .env file if one
// is present. A missing config file falls back to defaults so the
// embedded store works out of the box.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Store: StoreConfig{
			Backend:  "chromem",
			Chromem:  ChromemConfig{Path: "./chromemdb", Collection: "call_transcripts"},
			Postgres: PostgresConfig{VectorSize: 768},
		},
		Segmenter: SegmenterConfig{ChunkSize: 400, Overlap: 80},
		Embedding: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "chromem"
	}
	if cfg.Store.Chromem.Path == "" {
		cfg.Store.Chromem.Path = "./chromemdb"
	}
	if cfg.Store.Chromem.Collection == "" {
		cfg.Store.Chromem.Collection = "call_transcripts"
	}
	if cfg.Store.Postgres.VectorSize == 0 {
		cfg.Store.Postgres.VectorSize = 768
	}
	if cfg.Segmenter.ChunkSize == 0 {
		cfg.Segmenter.ChunkSize = 400
		if cfg.Segmenter.Overlap == 0 {
			cfg.Segmenter.Overlap = 80
		}
	}
	if cfg.LLM.APIKeyEnv == "" && cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		case "openrouter":
			cfg.LLM.APIKeyEnv = "OPENROUTER_API_KEY"
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "chromem", "postgres":
	default:
		return fmt.Errorf("%w: unknown store backend %q", models.ErrConfiguration, cfg.Store.Backend)
	}
	if cfg.Store.Backend == "postgres" && cfg.Store.Postgres.DSN == "" {
		return fmt.Errorf("%w: postgres store selected but dsn is empty", models.ErrConfiguration)
	}
	if cfg.Segmenter.Overlap < 0 || cfg.Segmenter.Overlap >= cfg.Segmenter.ChunkSize {
		return fmt.Errorf("%w: segmenter overlap %d must satisfy 0 <= overlap < chunk size %d", models.ErrConfiguration, cfg.Segmenter.Overlap, cfg.Segmenter.ChunkSize)
	}
	return nil
}
