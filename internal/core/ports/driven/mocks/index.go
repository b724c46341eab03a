package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// MockVectorIndex is a mock implementation of VectorIndex for testing.
// Indexed chunks are stored per collection; Search matches on naive token
// overlap between query and chunk text, which is enough for pipeline tests
// to retrieve seeded passages.
type MockVectorIndex struct {
	mu          sync.RWMutex
	collections map[string][]domain.Chunk

	// Responses, when set, overrides matching: each query returns the
	// passages registered for it verbatim.
	Responses map[string][]domain.Passage

	// IndexErr is returned by Index when set
	IndexErr error

	// SearchErr is returned by Search when set
	SearchErr error

	// Acknowledged is reported in the IndexingStatus
	Acknowledged bool

	// IndexCalls counts Index invocations per collection
	IndexCalls map[string]int

	// SearchCalls records every query batch passed to Search
	SearchCalls [][]string

	// DeletedCollections records DeleteCollection calls
	DeletedCollections []string
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		collections:  make(map[string][]domain.Chunk),
		Responses:    make(map[string][]domain.Passage),
		Acknowledged: true,
		IndexCalls:   make(map[string]int),
	}
}

func (m *MockVectorIndex) Index(ctx context.Context, chunks []domain.Chunk, collection string) (domain.IndexingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IndexCalls[collection]++
	if m.IndexErr != nil {
		return domain.IndexingStatus{}, m.IndexErr
	}

	// Recreate semantics: replace any prior contents
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	m.collections[collection] = stored

	return domain.IndexingStatus{
		Collection:    collection,
		ChunksWritten: len(chunks),
		Acknowledged:  m.Acknowledged,
	}, nil
}

func (m *MockVectorIndex) Search(ctx context.Context, queries []string, domainTag, collection string) ([]domain.Passage, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, append([]string(nil), queries...))
	m.mu.Unlock()

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := make(map[string]domain.Passage)
	order := make([]string, 0)

	record := func(p domain.Passage) {
		existing, ok := merged[p.ID]
		if !ok {
			merged[p.ID] = p
			order = append(order, p.ID)
			return
		}
		if p.Score > existing.Score {
			merged[p.ID] = p
		}
	}

	for _, query := range queries {
		if canned, ok := m.Responses[query]; ok {
			for _, p := range canned {
				record(p)
			}
			continue
		}
		for _, chunk := range m.collections[collection] {
			if score := overlapScore(query, chunk.Text); score > 0 {
				record(domain.Passage{ID: chunk.ID, Text: chunk.Text, Score: score})
			}
		}
	}

	out := make([]domain.Passage, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (m *MockVectorIndex) DeleteCollection(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	m.DeletedCollections = append(m.DeletedCollections, collection)
	return nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error { return nil }

// Stored returns the chunks currently held for a collection
func (m *MockVectorIndex) Stored(collection string) []domain.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collections[collection]
}

// overlapScore is a crude token-overlap ratio used only by the mock
func overlapScore(query, text string) float64 {
	queryTokens := strings.Fields(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, tok := range queryTokens {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}
