package mocks

import (
	"context"
	"sync"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// MockDocumentLoader is a mock implementation of DocumentLoader for testing
type MockDocumentLoader struct {
	mu sync.Mutex

	// Chunks is returned by Load when LoadErr is nil
	Chunks []domain.Chunk

	// LoadErr is returned by Load when set
	LoadErr error

	// Calls records every URL passed to Load
	Calls []string
}

// NewMockDocumentLoader creates a new MockDocumentLoader
func NewMockDocumentLoader() *MockDocumentLoader {
	return &MockDocumentLoader{}
}

func (m *MockDocumentLoader) Load(ctx context.Context, url string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, url)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]domain.Chunk, len(m.Chunks))
	copy(out, m.Chunks)
	return out, nil
}

// CallCount returns how many times Load was invoked
func (m *MockDocumentLoader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
