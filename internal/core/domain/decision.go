package domain

// DecisionError is the decision value of the degraded record produced when
// the underlying generation call fails.
const DecisionError = "Error"

// Decision is the structured answer to one question: an outcome, the facts
// it rests on, a causal justification and the literal policy clauses that
// support it.
type Decision struct {
	Decision      string         `json:"decision"`
	Details       map[string]any `json:"details"`
	Justification string         `json:"justification"`
	Clauses       []string       `json:"clauses"`
}

// IsDegraded reports whether this decision is the degraded failure record.
func (d *Decision) IsDegraded() bool {
	return d.Decision == DecisionError
}

// Critique is the model's structured self-assessment of a Decision.
type Critique struct {
	CorrectionNeeded bool    `json:"correction_needed"`
	ConfidenceScore  float64 `json:"confidence_score"`
	Feedback         string  `json:"feedback"`
}

// DegradedDecision builds the terminal, non-retried failure pair returned
// when generation fails. The critique never requests a correction so the
// failure cannot re-enter a retry loop.
func DegradedDecision(cause error) (*Decision, *Critique) {
	justification := "generation failed"
	if cause != nil {
		justification = cause.Error()
	}
	decision := &Decision{
		Decision:      DecisionError,
		Details:       map[string]any{},
		Justification: justification,
		Clauses:       []string{},
	}
	critique := &Critique{
		CorrectionNeeded: false,
		ConfidenceScore:  0.0,
		Feedback:         "Generation failed.",
	}
	return decision, critique
}
