package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job is one unit of work: a single document plus an ordered batch of user
// questions. The job ID doubles as the name of the document's semantic
// search collection, so no two jobs ever address the same collection.
type Job struct {
	ID          string    `json:"id"`
	DocumentURL string    `json:"document_url"`
	Questions   []string  `json:"questions"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewJob creates a job with a fresh unique identifier.
func NewJob(documentURL string, questions []string) *Job {
	return &Job{
		ID:          uuid.NewString(),
		DocumentURL: documentURL,
		Questions:   questions,
		CreatedAt:   time.Now(),
	}
}

// Collection returns the semantic-search collection name for this job.
// Collection identity is the job ID.
func (j *Job) Collection() string { return j.ID }

// JobStatus is the user-visible state of an asynchronously submitted job.
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailure JobStatus = "FAILURE"
)

// JobResult is the terminal output of a completed job: one decision per
// question, in question order.
type JobResult struct {
	JobID   string     `json:"job_id"`
	Answers []Decision `json:"answers"`
}

// JobStatusReport is returned by the status-polling surface.
type JobStatusReport struct {
	TaskID string     `json:"task_id"`
	Status JobStatus  `json:"status"`
	Result *JobResult `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}
