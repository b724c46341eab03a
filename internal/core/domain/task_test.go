package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" {
		t.Error("expected non-empty ID")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
	// Base64 URL encoding of 16 bytes = 22 chars
	if len(id1) != 22 {
		t.Errorf("expected ID length 22, got %d", len(id1))
	}
}

func TestNewTask(t *testing.T) {
	payload := map[string]string{"key": "value"}

	task := NewTask(TaskTypeProcessJob, payload)

	if task.ID == "" {
		t.Error("expected non-empty ID")
	}
	if task.Type != TaskTypeProcessJob {
		t.Errorf("expected type %s, got %s", TaskTypeProcessJob, task.Type)
	}
	if task.Payload["key"] != "value" {
		t.Error("expected payload to be set")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
	}
	if task.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", task.Attempts)
	}
	if task.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", task.MaxAttempts)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if task.ScheduledFor.IsZero() {
		t.Error("expected ScheduledFor to be set")
	}
}

func TestProcessJobTaskRoundTrip(t *testing.T) {
	job := NewJob("https://example.com/policy.pdf", []string{
		"What is the grace period for premium payment?",
		"What is the waiting period for pre-existing diseases?",
	})

	task, err := NewProcessJobTask(job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type != TaskTypeProcessJob {
		t.Errorf("expected type %s, got %s", TaskTypeProcessJob, task.Type)
	}

	got, err := task.Job()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != job.ID {
		t.Errorf("expected job ID %s, got %s", job.ID, got.ID)
	}
	if got.DocumentURL != job.DocumentURL {
		t.Errorf("expected document URL %s, got %s", job.DocumentURL, got.DocumentURL)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	if got.Questions[0] != job.Questions[0] {
		t.Errorf("question order not preserved: %q", got.Questions[0])
	}
}

func TestTaskJobWrongType(t *testing.T) {
	task := NewTask("unknown", nil)
	if _, err := task.Job(); err == nil {
		t.Error("expected error for non process_job task")
	}
}

func TestTaskLifecycle(t *testing.T) {
	task := NewTask(TaskTypeProcessJob, nil)

	task.MarkProcessing()
	if task.Status != TaskStatusProcessing {
		t.Errorf("expected processing, got %s", task.Status)
	}
	if task.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", task.Attempts)
	}
	if task.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}

	result := json.RawMessage(`{"answers":[]}`)
	task.MarkCompleted(result)
	if task.Status != TaskStatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if string(task.Result) != `{"answers":[]}` {
		t.Errorf("expected result to be stored, got %s", task.Result)
	}
}

func TestTaskRetryBackoff(t *testing.T) {
	task := NewTask(TaskTypeProcessJob, nil)
	task.MarkProcessing()

	before := time.Now()
	task.Retry("transient failure")

	if task.Status != TaskStatusPending {
		t.Errorf("expected pending after retry, got %s", task.Status)
	}
	if task.Error != "transient failure" {
		t.Errorf("expected error message to be kept, got %q", task.Error)
	}
	if !task.ScheduledFor.After(before) {
		t.Error("expected retry to be scheduled in the future")
	}
	if !task.CanRetry() {
		t.Error("expected task to still be retryable")
	}
}

func TestTaskStatusJobStatus(t *testing.T) {
	tests := []struct {
		in   TaskStatus
		want JobStatus
	}{
		{TaskStatusPending, JobStatusPending},
		{TaskStatusProcessing, JobStatusPending},
		{TaskStatusCompleted, JobStatusSuccess},
		{TaskStatusFailed, JobStatusFailure},
	}
	for _, tt := range tests {
		if got := tt.in.JobStatus(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}
