// Package qdrant implements the vector index on Qdrant's REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index implements driven.VectorIndex using Qdrant over HTTP. Collections
// are recreated on every Index call, matching the one-collection-per-job
// lifecycle.
type Index struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	embedder   driven.EmbeddingService
	topK       int
	logger     *slog.Logger
}

// Config holds Qdrant connection configuration.
type Config struct {
	// BaseURL is the Qdrant endpoint (e.g., http://localhost:6333)
	BaseURL string

	// APIKey is sent as the api-key header when set
	APIKey string

	// TopK is the per-query search limit
	TopK int

	// Timeout for HTTP requests
	Timeout time.Duration

	Logger *slog.Logger
}

// NewIndex creates a Qdrant-backed VectorIndex.
func NewIndex(cfg Config, embedder driven.EmbeddingService) *Index {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Index{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		embedder:   embedder,
		topK:       topK,
		logger:     logger.With("component", "qdrant"),
	}
}

type pointPayload struct {
	ChunkID  string `json:"chunk_id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Domain   string `json:"domain,omitempty"`
}

// Index recreates the collection and writes every chunk with its embedding.
// The upsert uses wait=true, so a successful return means the points are
// visible to search and the returned status is acknowledged.
func (x *Index) Index(ctx context.Context, chunks []domain.Chunk, collection string) (domain.IndexingStatus, error) {
	if len(chunks) == 0 {
		return domain.IndexingStatus{}, fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}

	if err := x.recreateCollection(ctx, collection); err != nil {
		return domain.IndexingStatus{}, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.IndexingStatus{}, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return domain.IndexingStatus{}, fmt.Errorf("%w: embedder returned %d vectors for %d chunks", domain.ErrIngestion, len(vectors), len(chunks))
	}

	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		payload := pointPayload{
			ChunkID:  c.ID,
			Text:     c.Text,
			Position: c.Position,
		}
		if d, ok := c.Metadata[domain.MetadataDomainKey]; ok {
			payload.Domain = d
		}
		points[i] = map[string]any{
			"id":      c.Position,
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", x.baseURL, collection)
	if err := x.doJSON(ctx, http.MethodPut, url, map[string]any{"points": points}, nil); err != nil {
		return domain.IndexingStatus{}, fmt.Errorf("upsert points: %w", err)
	}

	x.logger.Info("chunks indexed", "collection", collection, "chunks", len(chunks))
	return domain.IndexingStatus{
		Collection:    collection,
		ChunksWritten: len(chunks),
		Acknowledged:  true,
	}, nil
}

// recreateCollection drops any existing collection of that name and creates
// a fresh one sized to the embedder's dimensions.
func (x *Index) recreateCollection(ctx context.Context, collection string) error {
	// Deleting a missing collection is not an error worth surfacing
	delURL := fmt.Sprintf("%s/collections/%s", x.baseURL, collection)
	if err := x.doJSON(ctx, http.MethodDelete, delURL, nil, nil); err != nil {
		x.logger.Debug("delete before create", "collection", collection, "error", err)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     x.embedder.Dimensions(),
			"distance": "Cosine",
		},
	}
	if err := x.doJSON(ctx, http.MethodPut, delURL, body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      json.Number  `json:"id"`
		Score   float64      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
}

// Search embeds every query and runs them against the collection
// concurrently. Individual query failures are logged and contribute no
// passages; the merged pool is deduplicated by chunk, keeping the highest
// score, and returned in descending score order.
func (x *Index) Search(ctx context.Context, queries []string, domainTag, collection string) ([]domain.Passage, error) {
	if len(queries) == 0 {
		return []domain.Passage{}, nil
	}

	var mu sync.Mutex
	merged := make(map[string]domain.Passage)
	order := make([]string, 0)

	eg, gctx := errgroup.WithContext(ctx)
	for _, query := range queries {
		eg.Go(func() error {
			passages, err := x.searchOne(gctx, query, domainTag, collection)
			if err != nil {
				// A failed sub-query narrows the pool, it does not
				// fail retrieval.
				x.logger.Warn("sub-query failed", "collection", collection, "query", query, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, p := range passages {
				existing, ok := merged[p.ID]
				if !ok {
					merged[p.ID] = p
					order = append(order, p.ID)
					continue
				}
				if p.Score > existing.Score {
					merged[p.ID] = p
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Passage, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	x.logger.Debug("search merged", "collection", collection, "queries", len(queries), "passages", len(out))
	return out, nil
}

func (x *Index) searchOne(ctx context.Context, query, domainTag, collection string) ([]domain.Passage, error) {
	vector, err := x.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        x.topK,
		"with_payload": true,
	}
	if domainTag != "" {
		req["filter"] = map[string]any{
			"must": []map[string]any{
				{"key": "domain", "match": map[string]any{"value": domainTag}},
			},
		}
	}

	var resp searchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", x.baseURL, collection)
	if err := x.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		passages = append(passages, domain.Passage{
			ID:    r.Payload.ChunkID,
			Text:  r.Payload.Text,
			Score: r.Score,
		})
	}
	return passages, nil
}

// DeleteCollection drops a collection.
func (x *Index) DeleteCollection(ctx context.Context, collection string) error {
	url := fmt.Sprintf("%s/collections/%s", x.baseURL, collection)
	if err := x.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

// HealthCheck verifies the Qdrant endpoint responds.
func (x *Index) HealthCheck(ctx context.Context) error {
	if err := x.doJSON(ctx, http.MethodGet, x.baseURL+"/collections", nil, nil); err != nil {
		return fmt.Errorf("%w: qdrant: %v", domain.ErrServiceUnavailable, err)
	}
	return nil
}

func (x *Index) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("qdrant %s %s: %s - %s", method, url, resp.Status, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
