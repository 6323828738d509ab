// Package file provides the TOML-backed configuration store.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration, persisted as TOML.
type Config struct {
	Corpus   CorpusConfig   `toml:"corpus"`
	Ollama   OllamaConfig   `toml:"ollama"`
	Chroma   ChromaConfig   `toml:"chroma"`
	Chunking ChunkingConfig `toml:"chunking"`
	Chat     ChatConfig     `toml:"chat"`
	Storage  StorageConfig  `toml:"storage"`
}

// CorpusConfig locates the source corpus.
type CorpusConfig struct {
	// Path is the JSONL corpus file path.
	Path string `toml:"path"`
}

// OllamaConfig configures the embedding and generation backends.
type OllamaConfig struct {
	BaseURL        string `toml:"base_url"`
	EmbeddingModel string `toml:"embedding_model"`
	LLMModel       string `toml:"llm_model"`
}

// ChromaConfig configures the vector store.
type ChromaConfig struct {
	BaseURL    string `toml:"base_url"`
	Collection string `toml:"collection"`
}

// ChunkingConfig holds the word-window parameters used at ingestion.
type ChunkingConfig struct {
	TargetWords  int `toml:"target_words"`
	OverlapWords int `toml:"overlap_words"`
	MinWords     int `toml:"min_words"`
}

// ChatConfig holds retrieval and generation parameters.
type ChatConfig struct {
	TopK               int     `toml:"top_k"`
	MaxInputLength     int     `toml:"max_input_length"`
	MaxHistoryMessages int     `toml:"max_history_messages"`
	MinRelevance       float64 `toml:"min_relevance"`
	Temperature        float64 `toml:"temperature"`
	TopP               float64 `toml:"top_p"`
	MaxTokens          int     `toml:"max_tokens"`
}

// StorageConfig locates local persistent data.
type StorageConfig struct {
	// DataDir holds the history database. Empty means ~/.sitechat/data.
	DataDir string `toml:"data_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Corpus: CorpusConfig{
			Path: "sites.jsonl",
		},
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			LLMModel:       "llama3.2",
		},
		Chroma: ChromaConfig{
			BaseURL:    "http://localhost:8000",
			Collection: "heritage_sites",
		},
		Chunking: ChunkingConfig{
			TargetWords:  200,
			OverlapWords: 30,
			MinWords:     15,
		},
		Chat: ChatConfig{
			TopK:               5,
			MaxInputLength:     500,
			MaxHistoryMessages: 6,
			Temperature:        0.7,
			TopP:               0.9,
			MaxTokens:          500,
		},
	}
}

// ConfigStore loads and saves the TOML configuration file.
type ConfigStore struct {
	filePath string
}

// NewConfigStore creates a config store.
// If configDir is empty, defaults to ~/.sitechat/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sitechat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads the configuration, filling unset fields with defaults and
// applying environment overrides last. A missing file is not an error.
func (s *ConfigStore) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", s.filePath, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save persists the configuration to disk.
func (s *ConfigStore) Save(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// applyEnv overrides config fields from the environment. Variables beat the
// file so containers can point at different backends without editing it.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SITECHAT_CORPUS"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("SITECHAT_OLLAMA_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("SITECHAT_EMBEDDING_MODEL"); v != "" {
		cfg.Ollama.EmbeddingModel = v
	}
	if v := os.Getenv("SITECHAT_LLM_MODEL"); v != "" {
		cfg.Ollama.LLMModel = v
	}
	if v := os.Getenv("SITECHAT_CHROMA_URL"); v != "" {
		cfg.Chroma.BaseURL = v
	}
	if v := os.Getenv("SITECHAT_COLLECTION"); v != "" {
		cfg.Chroma.Collection = v
	}
	if v := os.Getenv("SITECHAT_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
}
