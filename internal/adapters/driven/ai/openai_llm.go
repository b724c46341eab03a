package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LanguageModel
var _ driven.LanguageModel = (*OpenAILLM)(nil)

// OpenAILLM implements LanguageModel using OpenAI's chat completions API
// with JSON-mode structured output.
type OpenAILLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// LLMConfig holds OpenAI chat configuration
type LLMConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAILLM creates a new OpenAI-backed language model
func NewOpenAILLM(cfg LLMConfig) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", domain.ErrInvalidInput)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OpenAILLM{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

const analyzeSystemPrompt = `You are an expert insurance and legal document analyst.
Decompose the user's question into a structured search plan. Respond with a JSON object:
{
  "domain": "the document domain, e.g. Health Insurance",
  "key_entities": {"entity name": "value"},
  "search_queries": ["3 to 5 short semantic search queries covering the question"],
  "hypotheses": ["up to 4 plausible answers to verify against the document"]
}
Search queries must be self-contained phrases a vector search can match against policy text.`

const decideSystemPrompt = `You are an expert claims adjudicator. Using ONLY the provided
document passages, answer the analyzed question. Respond with a JSON object:
{
  "decision": {
    "decision": "the verdict or direct answer",
    "details": {"amount or other structured facts": "value"},
    "justification": "reasoning grounded in the passages",
    "clauses": ["verbatim clause fragments supporting the decision"]
  },
  "critique": {
    "correction_needed": false,
    "confidence_score": 0.0,
    "feedback": "a short self-review of the decision"
  }
}
Set correction_needed to true only when the decision is not adequately supported by the
cited clauses. confidence_score is between 0 and 1.`

// AnalyzeQuery decomposes a question into a structured query record.
func (l *OpenAILLM) AnalyzeQuery(ctx context.Context, question string) (*domain.AnalyzedQuery, error) {
	content, err := l.complete(ctx, analyzeSystemPrompt, "Question: "+question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysis, err)
	}

	var query domain.AnalyzedQuery
	if err := json.Unmarshal([]byte(content), &query); err != nil {
		return nil, fmt.Errorf("%w: decode analysis: %w", domain.ErrAnalysis, err)
	}
	return &query, nil
}

type decisionEnvelope struct {
	Decision *domain.Decision `json:"decision"`
	Critique *domain.Critique `json:"critique"`
}

// GenerateDecision produces a decision and self-critique in a single call.
// When feedback is non-nil, the prior critique is injected as a corrective
// instruction for the retry.
func (l *OpenAILLM) GenerateDecision(ctx context.Context, query *domain.AnalyzedQuery, passages []string, feedback *domain.Critique) (*domain.Decision, *domain.Critique, error) {
	var sb strings.Builder
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encode query: %w", domain.ErrGeneration, err)
	}
	sb.WriteString("Analyzed question:\n")
	sb.Write(queryJSON)
	sb.WriteString("\n\nDocument passages:\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, p)
	}
	if len(passages) == 0 {
		sb.WriteString("(no passages were retrieved)\n")
	}
	if feedback != nil {
		fmt.Fprintf(&sb, "\nYour previous answer was rejected with this feedback: %q\nAddress the feedback in the new decision.\n", feedback.Feedback)
	}

	content, err := l.complete(ctx, decideSystemPrompt, sb.String())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	var envelope decisionEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: decode decision: %w", domain.ErrGeneration, err)
	}
	if envelope.Decision == nil || envelope.Critique == nil {
		return nil, nil, fmt.Errorf("%w: response missing decision or critique", domain.ErrGeneration)
	}
	return envelope.Decision, envelope.Critique, nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping verifies the API is reachable with the configured credentials.
func (l *OpenAILLM) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/models/"+l.model, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openai: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: openai returned %s", domain.ErrServiceUnavailable, resp.Status)
	}
	return nil
}

// Close releases resources held by the client
func (l *OpenAILLM) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// complete runs one JSON-mode chat completion and returns the raw content.
func (l *OpenAILLM) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: l.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: &formatSpec{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
