package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven/mocks"
)

func TestAnalyzerAnalyze(t *testing.T) {
	llm := mocks.NewMockLanguageModel()
	llm.Analyses["Is knee surgery covered?"] = &domain.AnalyzedQuery{
		Domain:        "Health Insurance",
		KeyEntities:   map[string]any{"procedure": "knee surgery"},
		SearchQueries: []string{"knee surgery coverage", "orthopedic surgery waiting period"},
		Hypotheses:    []string{"covered after waiting period"},
	}
	analyzer := NewAnalyzer(llm, nil)

	query, err := analyzer.Analyze(context.Background(), "Is knee surgery covered?")
	require.NoError(t, err)
	assert.Equal(t, "Health Insurance", query.Domain)
	assert.Len(t, query.SearchQueries, 2)
}

func TestAnalyzerTrimsQuestion(t *testing.T) {
	llm := mocks.NewMockLanguageModel()
	analyzer := NewAnalyzer(llm, nil)

	_, err := analyzer.Analyze(context.Background(), "  What is the grace period?  ")
	require.NoError(t, err)
	require.Len(t, llm.AnalyzeCalls, 1)
	assert.Equal(t, "What is the grace period?", llm.AnalyzeCalls[0])
}

func TestAnalyzerEmptyQuestion(t *testing.T) {
	analyzer := NewAnalyzer(mocks.NewMockLanguageModel(), nil)

	_, err := analyzer.Analyze(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnalysis)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyzerModelFailure(t *testing.T) {
	cause := errors.New("model timeout")
	llm := mocks.NewMockLanguageModel()
	llm.AnalyzeErr = cause
	analyzer := NewAnalyzer(llm, nil)

	_, err := analyzer.Analyze(context.Background(), "Is dental covered?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnalysis)
	assert.ErrorIs(t, err, cause)

	var analysisErr *domain.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, "Is dental covered?", analysisErr.Question)
}

func TestAnalyzerRejectsMalformedRecord(t *testing.T) {
	llm := mocks.NewMockLanguageModel()
	llm.Analyses["bad"] = &domain.AnalyzedQuery{Domain: "Insurance"} // no search queries
	analyzer := NewAnalyzer(llm, nil)

	_, err := analyzer.Analyze(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAnalysis)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
