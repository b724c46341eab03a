package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Mode != "all" {
		t.Errorf("mode = %q, want all", cfg.Mode)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("chunking = %d/%d, want 1000/200", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Rerank.Scorer != "lexical" {
		t.Errorf("scorer = %q, want lexical", cfg.Rerank.Scorer)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Qdrant.URL != "http://localhost:6333" {
		t.Errorf("qdrant url = %q", cfg.Qdrant.URL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
mode: api
server:
  port: 9090
openai:
  chat_model: gpt-4o
ingest:
  chunk_size: 750
  settle_delay: 500ms
rerank:
  scorer: embedding
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "api" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o" {
		t.Errorf("chat model = %q", cfg.OpenAI.ChatModel)
	}
	if cfg.Ingest.ChunkSize != 750 {
		t.Errorf("chunk size = %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.SettleDelay != 500*time.Millisecond {
		t.Errorf("settle delay = %v", cfg.Ingest.SettleDelay)
	}
	if cfg.Rerank.Scorer != "embedding" {
		t.Errorf("scorer = %q", cfg.Rerank.Scorer)
	}
	// Untouched keys keep their defaults.
	if cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("chunk overlap = %d, want default 200", cfg.Ingest.ChunkOverlap)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("INDEX_SETTLE_DELAY", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.OpenAI.APIKey)
	}
	if cfg.Ingest.SettleDelay != 3*time.Second {
		t.Errorf("settle delay = %v", cfg.Ingest.SettleDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "batch" }},
		{"bad scorer", func(c *Config) { c.Rerank.Scorer = "neural" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad chunk size", func(c *Config) { c.Ingest.ChunkSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
