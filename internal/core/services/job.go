package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driven"
	"github.com/rajeev-sr/hackrx/internal/core/ports/driving"
)

// jobService is the application-facing entry point for document-QA jobs.
// It validates requests, runs the batch pipeline synchronously, or hands
// jobs to the task queue for background processing.
type jobService struct {
	pipeline    *DocumentPipeline
	interactive *InteractivePipeline
	queue       driven.TaskQueue
	logger      *slog.Logger
}

// JobServiceConfig holds dependencies for the job service. Queue may be nil
// when the deployment has no background processing; Submit and Status then
// report ErrServiceUnavailable.
type JobServiceConfig struct {
	Pipeline    *DocumentPipeline
	Interactive *InteractivePipeline
	Queue       driven.TaskQueue
	Logger      *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(cfg JobServiceConfig) driving.JobService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &jobService{
		pipeline:    cfg.Pipeline,
		interactive: cfg.Interactive,
		queue:       cfg.Queue,
		logger:      logger.With("component", "job_service"),
	}
}

func validateJobRequest(documentURL string, questions []string) error {
	if strings.TrimSpace(documentURL) == "" {
		return fmt.Errorf("%w: document URL is required", domain.ErrInvalidInput)
	}
	for i, q := range questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("%w: question %d is empty", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

func (s *jobService) Process(ctx context.Context, documentURL string, questions []string) (*domain.JobResult, error) {
	if err := validateJobRequest(documentURL, questions); err != nil {
		return nil, err
	}

	job := domain.NewJob(documentURL, questions)
	answers, err := s.pipeline.Execute(ctx, job)
	if err != nil {
		s.logger.Error("job failed", "job_id", job.ID, "error", err)
		return nil, err
	}
	return &domain.JobResult{JobID: job.ID, Answers: answers}, nil
}

func (s *jobService) Submit(ctx context.Context, documentURL string, questions []string) (*domain.Task, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("%w: background processing is not configured", domain.ErrServiceUnavailable)
	}
	if err := validateJobRequest(documentURL, questions); err != nil {
		return nil, err
	}

	job := domain.NewJob(documentURL, questions)
	task, err := domain.NewProcessJobTask(job)
	if err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}

	s.logger.Info("job submitted", "job_id", job.ID, "task_id", task.ID, "questions", len(questions))
	return task, nil
}

func (s *jobService) Status(ctx context.Context, taskID string) (*domain.JobStatusReport, error) {
	if s.queue == nil {
		return nil, fmt.Errorf("%w: background processing is not configured", domain.ErrServiceUnavailable)
	}

	task, err := s.queue.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	report := &domain.JobStatusReport{
		TaskID: task.ID,
		Status: task.Status.JobStatus(),
	}
	switch task.Status {
	case domain.TaskStatusCompleted:
		if len(task.Result) > 0 {
			var result domain.JobResult
			if err := json.Unmarshal(task.Result, &result); err != nil {
				return nil, fmt.Errorf("decode result for task %s: %w", task.ID, err)
			}
			report.Result = &result
		}
	case domain.TaskStatusFailed:
		report.Error = task.Error
	}
	return report, nil
}

func (s *jobService) Ask(ctx context.Context, collection, question string) (*domain.Decision, error) {
	return s.interactive.Ask(ctx, collection, question)
}
