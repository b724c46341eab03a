package mocks

import (
	"context"
	"sync"
)

// MockRelevanceScorer is a mock implementation of RelevanceScorer for testing
type MockRelevanceScorer struct {
	mu sync.Mutex

	// Scores maps a candidate passage to its score. Unknown candidates
	// score 0.
	Scores map[string]float64

	// ScoreErr is returned by Score when set
	ScoreErr error

	// Calls counts Score invocations
	Calls int
}

// NewMockRelevanceScorer creates a new MockRelevanceScorer
func NewMockRelevanceScorer() *MockRelevanceScorer {
	return &MockRelevanceScorer{Scores: make(map[string]float64)}
}

func (m *MockRelevanceScorer) Score(ctx context.Context, question, candidate string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.ScoreErr != nil {
		return 0, m.ScoreErr
	}
	return m.Scores[candidate], nil
}

func (m *MockRelevanceScorer) Name() string { return "mock-scorer" }
