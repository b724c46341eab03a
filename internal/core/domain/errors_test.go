package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrIngestion,
		ErrDownload,
		ErrUnsupportedFormat,
		ErrAnalysis,
		ErrRetrieval,
		ErrRerank,
		ErrGeneration,
		ErrPipeline,
		ErrServiceUnavailable,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors %v and %v should be distinct", err1, err2)
			}
		}
	}
}

func TestAnalysisErrorClassification(t *testing.T) {
	cause := errors.New("model returned malformed JSON")
	err := &AnalysisError{Question: "What is covered?", Err: cause}

	if !errors.Is(err, ErrAnalysis) {
		t.Error("expected AnalysisError to match ErrAnalysis")
	}
	if !errors.Is(err, cause) {
		t.Error("expected AnalysisError to unwrap to its cause")
	}

	var target *AnalysisError
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to find AnalysisError")
	}
	if target.Question != "What is covered?" {
		t.Errorf("expected question to be carried, got %q", target.Question)
	}
}

func TestPipelineErrorClassification(t *testing.T) {
	cause := fmt.Errorf("fetch: %w", ErrDownload)
	err := &PipelineError{Stage: "preprocess", Err: cause}

	if !errors.Is(err, ErrPipeline) {
		t.Error("expected PipelineError to match ErrPipeline")
	}
	if !errors.Is(err, ErrDownload) {
		t.Error("expected PipelineError to preserve the original cause chain")
	}

	var target *PipelineError
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to find PipelineError")
	}
	if target.Stage != "preprocess" {
		t.Errorf("expected stage to be carried, got %q", target.Stage)
	}
}

func TestDegradedDecision(t *testing.T) {
	decision, critique := DegradedDecision(errors.New("rate limited"))

	if decision.Decision != DecisionError {
		t.Errorf("expected decision %q, got %q", DecisionError, decision.Decision)
	}
	if !decision.IsDegraded() {
		t.Error("expected degraded decision to report as degraded")
	}
	if len(decision.Clauses) != 0 {
		t.Errorf("expected empty clauses, got %v", decision.Clauses)
	}
	if len(decision.Details) != 0 {
		t.Errorf("expected empty details, got %v", decision.Details)
	}
	if decision.Justification != "rate limited" {
		t.Errorf("expected justification to carry the error text, got %q", decision.Justification)
	}
	if critique.CorrectionNeeded {
		t.Error("degraded critique must never request correction")
	}
	if critique.ConfidenceScore != 0.0 {
		t.Errorf("expected zero confidence, got %f", critique.ConfidenceScore)
	}
}
