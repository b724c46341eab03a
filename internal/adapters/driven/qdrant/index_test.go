package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven/mocks"
)

// fakeQdrant is a minimal in-memory stand-in for the Qdrant REST API.
type fakeQdrant struct {
	mu       sync.Mutex
	requests []string // "METHOD path"
	searches []map[string]any

	// failSearches returns 500 from the search endpoint when set
	failSearches bool

	// results returned from every search call
	results []map[string]any

	// scripted overrides results per query, keyed by the query's vector
	// fingerprint (see vectorKey). A nil entry fails that query.
	scripted map[string][]map[string]any
}

func (f *fakeQdrant) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path+urlQuery(r))
		f.mu.Unlock()

		switch {
		case strings.HasSuffix(r.URL.Path, "/points/search"):
			if f.failSearches {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.searches = append(f.searches, body)
			f.mu.Unlock()

			results := f.results
			if f.scripted != nil {
				scripted, ok := f.scripted[decodedVectorKey(body["vector"])]
				if !ok || scripted == nil {
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				results = scripted
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"result": results})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"result": true, "status": "ok"})
		}
	})
}

// vectorKey fingerprints a query embedding so the fake can script results
// per query. The mock embedder is deterministic, so a fresh instance in the
// test produces the same vector the adapter sends.
func vectorKey(vec []float32) string {
	var sb strings.Builder
	for _, v := range vec {
		fmt.Fprintf(&sb, "%08x", math.Float32bits(v))
	}
	return sb.String()
}

// decodedVectorKey rebuilds the fingerprint from a JSON-decoded vector.
// float32 values survive the JSON round trip exactly.
func decodedVectorKey(raw any) string {
	values, _ := raw.([]any)
	vec := make([]float32, len(values))
	for i, v := range values {
		f, _ := v.(float64)
		vec[i] = float32(f)
	}
	return vectorKey(vec)
}

func queryKey(t *testing.T, query string) string {
	t.Helper()
	vec, err := mocks.NewMockEmbeddingService().EmbedQuery(context.Background(), query)
	require.NoError(t, err)
	return vectorKey(vec)
}

func urlQuery(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return ""
	}
	return "?" + r.URL.RawQuery
}

func (f *fakeQdrant) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newTestIndex(t *testing.T, fake *fakeQdrant) *Index {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	return NewIndex(Config{BaseURL: server.URL, TopK: 3}, mocks.NewMockEmbeddingService())
}

func testChunks() []domain.Chunk {
	c1 := domain.Chunk{ID: "doc:0", Text: "grace period is thirty days", Position: 0}
	c1.SetDomain("Health Insurance")
	c2 := domain.Chunk{ID: "doc:1", Text: "waiting period is ninety days", Position: 1}
	c2.SetDomain("Health Insurance")
	return []domain.Chunk{c1, c2}
}

func TestIndexRecreatesAndUpserts(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	status, err := idx.Index(context.Background(), testChunks(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", status.Collection)
	assert.Equal(t, 2, status.ChunksWritten)
	assert.True(t, status.Acknowledged)

	reqs := fake.recorded()
	require.Len(t, reqs, 3)
	assert.Equal(t, "DELETE /collections/job-1", reqs[0])
	assert.Equal(t, "PUT /collections/job-1", reqs[1])
	assert.Equal(t, "PUT /collections/job-1/points?wait=true", reqs[2])
}

func TestIndexRejectsEmptyChunks(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	_, err := idx.Index(context.Background(), nil, "job-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, fake.recorded())
}

func TestSearchAppliesDomainFilter(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	_, err := idx.Search(context.Background(), []string{"grace period"}, "Health Insurance", "job-1")
	require.NoError(t, err)

	require.Len(t, fake.searches, 1)
	body := fake.searches[0]
	assert.EqualValues(t, 3, body["limit"])

	filter, ok := body["filter"].(map[string]any)
	require.True(t, ok, "expected a filter clause")
	raw, _ := json.Marshal(filter)
	assert.Contains(t, string(raw), `"Health Insurance"`)
	assert.Contains(t, string(raw), `"domain"`)
}

func TestSearchOmitsFilterWithoutDomain(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	_, err := idx.Search(context.Background(), []string{"grace period"}, "", "job-1")
	require.NoError(t, err)

	require.Len(t, fake.searches, 1)
	_, hasFilter := fake.searches[0]["filter"]
	assert.False(t, hasFilter)
}

func TestSearchMergesAndDeduplicates(t *testing.T) {
	fake := &fakeQdrant{
		results: []map[string]any{
			{"id": 0, "score": 0.8, "payload": map[string]any{"chunk_id": "doc:0", "text": "grace period", "position": 0}},
			{"id": 1, "score": 0.5, "payload": map[string]any{"chunk_id": "doc:1", "text": "waiting period", "position": 1}},
		},
	}
	idx := newTestIndex(t, fake)

	// Both queries return the same points; the pool must contain each
	// chunk once, highest score kept, sorted descending.
	passages, err := idx.Search(context.Background(), []string{"q1", "q2"}, "", "job-1")
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "doc:0", passages[0].ID)
	assert.InDelta(t, 0.8, passages[0].Score, 1e-9)
	assert.Equal(t, "doc:1", passages[1].ID)
}

func TestSearchSurvivesPartialQueryFailure(t *testing.T) {
	point := func(id int, chunkID string, score float64, text string) map[string]any {
		return map[string]any{
			"id": id, "score": score,
			"payload": map[string]any{"chunk_id": chunkID, "text": text, "position": id},
		}
	}
	// q2 fails with a 500; the pool must still be the deduplicated union
	// of the surviving queries, shared chunk kept at its highest score.
	fake := &fakeQdrant{scripted: map[string][]map[string]any{
		queryKey(t, "q1"): {
			point(0, "doc:0", 0.3, "grace period"),
			point(1, "doc:1", 0.2, "waiting period"),
		},
		queryKey(t, "q2"): nil,
		queryKey(t, "q3"): {
			point(0, "doc:0", 0.4, "grace period"),
			point(2, "doc:2", 0.1, "room rent limit"),
		},
		queryKey(t, "q4"): {
			point(3, "doc:3", 0.15, "maternity cover"),
		},
	}}
	idx := newTestIndex(t, fake)

	passages, err := idx.Search(context.Background(), []string{"q1", "q2", "q3", "q4"}, "", "job-1")
	require.NoError(t, err)

	require.Len(t, passages, 4)
	assert.Equal(t, "doc:0", passages[0].ID)
	assert.InDelta(t, 0.4, passages[0].Score, 1e-9)
	assert.Equal(t, "doc:1", passages[1].ID)
	assert.Equal(t, "doc:3", passages[2].ID)
	assert.Equal(t, "doc:2", passages[3].ID)
}

func TestSearchAbsorbsQueryFailures(t *testing.T) {
	fake := &fakeQdrant{failSearches: true}
	idx := newTestIndex(t, fake)

	passages, err := idx.Search(context.Background(), []string{"q1", "q2"}, "", "job-1")
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestSearchEmptyQueries(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	passages, err := idx.Search(context.Background(), nil, "", "job-1")
	require.NoError(t, err)
	require.NotNil(t, passages)
	assert.Empty(t, passages)
	assert.Empty(t, fake.recorded())
}

func TestDeleteCollection(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)

	require.NoError(t, idx.DeleteCollection(context.Background(), "job-1"))
	assert.Equal(t, []string{"DELETE /collections/job-1"}, fake.recorded())
}

func TestHealthCheck(t *testing.T) {
	fake := &fakeQdrant{}
	idx := newTestIndex(t, fake)
	assert.NoError(t, idx.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	idx := NewIndex(Config{BaseURL: "http://127.0.0.1:1"}, mocks.NewMockEmbeddingService())
	err := idx.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}
