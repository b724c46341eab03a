package domain

import (
	"errors"
	"testing"
)

func validQuery() *AnalyzedQuery {
	return &AnalyzedQuery{
		Domain: "Insurance",
		KeyEntities: map[string]any{
			"procedure": "knee surgery",
			"age":       46,
		},
		SearchQueries: []string{
			"waiting period for knee surgery coverage",
			"network hospital status in Pune",
			"exclusions for orthopaedic procedures",
		},
		Hypotheses: []string{
			"claim approved under surgical benefit",
			"claim rejected due to waiting period",
		},
	}
}

func TestAnalyzedQueryValidate(t *testing.T) {
	q := validQuery()
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzedQueryValidateMissingDomain(t *testing.T) {
	q := validQuery()
	q.Domain = ""
	err := q.Validate()
	if err == nil {
		t.Fatal("expected error for missing domain")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyzedQueryValidateNoSearchQueries(t *testing.T) {
	q := validQuery()
	q.SearchQueries = nil
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for empty search queries")
	}
}

func TestAnalyzedQueryValidateNonScalarEntity(t *testing.T) {
	q := validQuery()
	q.KeyEntities["nested"] = map[string]any{"no": "good"}
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for non-scalar entity value")
	}
}

func TestAnalyzedQueryNormalize(t *testing.T) {
	q := &AnalyzedQuery{
		Domain:        "  Insurance  ",
		SearchQueries: []string{" a ", "", "b", "c", "d", "e", "f", "g"},
		Hypotheses:    []string{"", "h1", "h2", "h3", "h4", "h5"},
	}
	q.Normalize()

	if q.Domain != "Insurance" {
		t.Errorf("expected trimmed domain, got %q", q.Domain)
	}
	if len(q.SearchQueries) != MaxSearchQueries {
		t.Errorf("expected %d search queries, got %d", MaxSearchQueries, len(q.SearchQueries))
	}
	if q.SearchQueries[0] != "a" {
		t.Errorf("expected trimmed first query, got %q", q.SearchQueries[0])
	}
	if len(q.Hypotheses) != MaxHypotheses {
		t.Errorf("expected %d hypotheses, got %d", MaxHypotheses, len(q.Hypotheses))
	}
}
