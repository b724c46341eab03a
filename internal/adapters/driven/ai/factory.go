package ai

import (
	"time"
)

// Services bundles the AI clients the pipeline depends on.
type Services struct {
	LLM       *OpenAILLM
	Embedding *OpenAIEmbedding
}

// ServicesConfig configures both AI clients against one provider account.
type ServicesConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	BaseURL        string
	Timeout        time.Duration
}

// NewServices creates the chat and embedding clients from shared settings.
func NewServices(cfg ServicesConfig) (*Services, error) {
	llm, err := NewOpenAILLM(LLMConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.ChatModel,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	embedding, err := NewOpenAIEmbedding(EmbeddingConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.EmbeddingModel,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Services{LLM: llm, Embedding: embedding}, nil
}

// Close releases both clients.
func (s *Services) Close() error {
	_ = s.LLM.Close()
	return s.Embedding.Close()
}
