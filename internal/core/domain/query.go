package domain

import (
	"fmt"
	"strings"
)

// Bounds the analyzer enforces on the structured query record.
const (
	MaxSearchQueries = 5
	MaxHypotheses    = 4
)

// AnalyzedQuery is the structured decomposition of one free-text question.
type AnalyzedQuery struct {
	// Domain classifies the question's subject area (e.g. "Insurance").
	// It scopes retrieval and tailors generation prompts.
	Domain string `json:"domain"`

	// KeyEntities maps extracted fact names to scalar values. It is the
	// source of truth for fact-checking during generation.
	KeyEntities map[string]any `json:"key_entities,omitempty"`

	// SearchQueries are rephrased queries capturing retrieval-relevant
	// facets of the question. Never empty after validation.
	SearchQueries []string `json:"search_queries"`

	// Hypotheses are candidate interpretations or outcomes. They feed the
	// generation prompt, not retrieval.
	Hypotheses []string `json:"hypotheses,omitempty"`
}

// Normalize trims whitespace, drops empty entries and caps the list lengths.
func (q *AnalyzedQuery) Normalize() {
	q.Domain = strings.TrimSpace(q.Domain)
	q.SearchQueries = cleanList(q.SearchQueries, MaxSearchQueries)
	q.Hypotheses = cleanList(q.Hypotheses, MaxHypotheses)
}

// Validate checks the record against the analyzer contract. A violation
// means the structured-extraction call produced a malformed record and the
// caller must not proceed to retrieval.
func (q *AnalyzedQuery) Validate() error {
	if q.Domain == "" {
		return fmt.Errorf("%w: missing domain classification", ErrInvalidInput)
	}
	if len(q.SearchQueries) == 0 {
		return fmt.Errorf("%w: no search queries produced", ErrInvalidInput)
	}
	for name, value := range q.KeyEntities {
		if !isScalar(value) {
			return fmt.Errorf("%w: entity %q has non-scalar value %T", ErrInvalidInput, name, value)
		}
	}
	return nil
}

func cleanList(in []string, max int) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

// isScalar reports whether a decoded entity value is a permitted scalar.
// JSON decoding yields string, float64 and bool; integers are accepted for
// records built in code.
func isScalar(v any) bool {
	switch v.(type) {
	case string, float64, int, int64, float32, bool:
		return true
	default:
		return false
	}
}
