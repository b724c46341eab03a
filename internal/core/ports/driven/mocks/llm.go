package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// MockLanguageModel is a mock implementation of LanguageModel for testing
type MockLanguageModel struct {
	mu sync.Mutex

	// Analyses maps a question to the record AnalyzeQuery returns.
	// Questions without an entry get a generated default record.
	Analyses map[string]*domain.AnalyzedQuery

	// AnalyzeErr is returned by AnalyzeQuery when set
	AnalyzeErr error

	// Decisions maps a question's first search query to a scripted
	// decision/critique pair. Unscripted calls get a generic approval.
	Decisions map[string]*ScriptedDecision

	// GenerateErr is returned by GenerateDecision when set
	GenerateErr error

	// AnalyzeCalls records every analyzed question in call order
	AnalyzeCalls []string

	// GenerateCalls records every generation invocation
	GenerateCalls []GenerateCall
}

// ScriptedDecision is a canned GenerateDecision response
type ScriptedDecision struct {
	Decision *domain.Decision
	Critique *domain.Critique
}

// GenerateCall captures the arguments of one GenerateDecision invocation
type GenerateCall struct {
	Query    *domain.AnalyzedQuery
	Passages []string
	Feedback *domain.Critique
}

// NewMockLanguageModel creates a new MockLanguageModel
func NewMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{
		Analyses:  make(map[string]*domain.AnalyzedQuery),
		Decisions: make(map[string]*ScriptedDecision),
	}
}

func (m *MockLanguageModel) AnalyzeQuery(ctx context.Context, question string) (*domain.AnalyzedQuery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AnalyzeCalls = append(m.AnalyzeCalls, question)
	if m.AnalyzeErr != nil {
		return nil, m.AnalyzeErr
	}
	if q, ok := m.Analyses[question]; ok {
		return q, nil
	}
	return &domain.AnalyzedQuery{
		Domain:      "Insurance",
		KeyEntities: map[string]any{"question": question},
		SearchQueries: []string{
			question,
			fmt.Sprintf("policy terms for %s", strings.ToLower(question)),
			fmt.Sprintf("exclusions relevant to %s", strings.ToLower(question)),
		},
		Hypotheses: []string{"covered", "excluded"},
	}, nil
}

func (m *MockLanguageModel) GenerateDecision(ctx context.Context, query *domain.AnalyzedQuery, passages []string, feedback *domain.Critique) (*domain.Decision, *domain.Critique, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{
		Query:    query,
		Passages: append([]string(nil), passages...),
		Feedback: feedback,
	})
	if m.GenerateErr != nil {
		return nil, nil, m.GenerateErr
	}

	if len(query.SearchQueries) > 0 {
		if scripted, ok := m.Decisions[query.SearchQueries[0]]; ok {
			return scripted.Decision, scripted.Critique, nil
		}
	}

	clauses := passages
	if len(clauses) > 1 {
		clauses = clauses[:1]
	}
	return &domain.Decision{
			Decision:      "Approved",
			Details:       map[string]any{"domain": query.Domain},
			Justification: "matched the supplied policy clauses",
			Clauses:       append([]string(nil), clauses...),
		}, &domain.Critique{
			CorrectionNeeded: false,
			ConfidenceScore:  0.9,
			Feedback:         "decision is well supported",
		}, nil
}

func (m *MockLanguageModel) Model() string { return "mock-model" }

func (m *MockLanguageModel) Ping(ctx context.Context) error { return nil }

func (m *MockLanguageModel) Close() error { return nil }

// AnalyzeCount returns how many questions were analyzed
func (m *MockLanguageModel) AnalyzeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AnalyzeCalls)
}

// GenerateCount returns how many decisions were generated
func (m *MockLanguageModel) GenerateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}
