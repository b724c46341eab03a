// Package rerankers provides RelevanceScorer implementations used to order
// retrieved passages per question.
package rerankers

import (
	"context"
	"strings"
	"unicode"
)

// Lexical scores a candidate by weighted token overlap with the question.
// It is deterministic, needs no network calls, and is the default scorer
// when no embedding service is configured.
type Lexical struct{}

// NewLexical creates a Lexical scorer.
func NewLexical() *Lexical { return &Lexical{} }

func (l *Lexical) Name() string { return "lexical-overlap" }

// Score returns the fraction of question tokens present in the candidate,
// with tokens longer than three runes weighted double. Stopword-like short
// tokens still count, but barely move the score.
func (l *Lexical) Score(_ context.Context, question, candidate string) (float64, error) {
	qTokens := tokenize(question)
	if len(qTokens) == 0 {
		return 0, nil
	}

	cSet := make(map[string]struct{})
	for _, tok := range tokenize(candidate) {
		cSet[tok] = struct{}{}
	}

	var total, matched float64
	for _, tok := range qTokens {
		weight := 1.0
		if len([]rune(tok)) > 3 {
			weight = 2.0
		}
		total += weight
		if _, ok := cSet[tok]; ok {
			matched += weight
		}
	}
	return matched / total, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
