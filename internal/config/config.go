package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Values resolve in order:
// defaults, then the optional YAML file, then environment variables.
type Config struct {
	Mode string `yaml:"mode"` // api, worker, or all

	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	OpenAI struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		ChatModel      string `yaml:"chat_model"`
		EmbeddingModel string `yaml:"embedding_model"`
	} `yaml:"openai"`

	Qdrant struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
		TopK   int    `yaml:"top_k"`
	} `yaml:"qdrant"`

	Redis struct {
		URL string `yaml:"url"` // empty selects the in-process queue
	} `yaml:"redis"`

	Ingest struct {
		ChunkSize    int           `yaml:"chunk_size"`
		ChunkOverlap int           `yaml:"chunk_overlap"`
		MaxBytes     int64         `yaml:"max_bytes"`
		SettleDelay  time.Duration `yaml:"settle_delay"`
	} `yaml:"ingest"`

	Rerank struct {
		Scorer string `yaml:"scorer"` // lexical or embedding
	} `yaml:"rerank"`

	Worker struct {
		Concurrency    int `yaml:"concurrency"`
		DequeueTimeout int `yaml:"dequeue_timeout"` // seconds
	} `yaml:"worker"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Mode = "all"
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.OpenAI.ChatModel = "gpt-4o-mini"
	cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	cfg.Qdrant.URL = "http://localhost:6333"
	cfg.Qdrant.TopK = 5
	cfg.Ingest.ChunkSize = 1000
	cfg.Ingest.ChunkOverlap = 200
	cfg.Ingest.MaxBytes = 32 << 20
	cfg.Ingest.SettleDelay = 2 * time.Second
	cfg.Rerank.Scorer = "lexical"
	cfg.Worker.Concurrency = 2
	cfg.Worker.DequeueTimeout = 5
	return cfg
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips the file layer. Environment variables override both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Mode, "RUN_MODE")
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.ChatModel, "OPENAI_CHAT_MODEL")
	setString(&c.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")
	setString(&c.Qdrant.URL, "QDRANT_URL")
	setString(&c.Qdrant.APIKey, "QDRANT_API_KEY")
	setInt(&c.Qdrant.TopK, "RETRIEVAL_TOP_K")
	setString(&c.Redis.URL, "REDIS_URL")
	setInt(&c.Ingest.ChunkSize, "CHUNK_SIZE")
	setInt(&c.Ingest.ChunkOverlap, "CHUNK_OVERLAP")
	setInt64(&c.Ingest.MaxBytes, "MAX_DOCUMENT_BYTES")
	setDuration(&c.Ingest.SettleDelay, "INDEX_SETTLE_DELAY")
	setString(&c.Rerank.Scorer, "RERANK_SCORER")
	setInt(&c.Worker.Concurrency, "WORKER_CONCURRENCY")
	setInt(&c.Worker.DequeueTimeout, "WORKER_DEQUEUE_TIMEOUT")
}

func (c *Config) validate() error {
	switch c.Mode {
	case "api", "worker", "all":
	default:
		return fmt.Errorf("invalid mode %q (use: api, worker, or all)", c.Mode)
	}
	switch c.Rerank.Scorer {
	case "lexical", "embedding":
	default:
		return fmt.Errorf("invalid rerank scorer %q (use: lexical or embedding)", c.Rerank.Scorer)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.Ingest.ChunkOverlap)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
