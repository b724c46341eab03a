package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

// ErrorResponse is the body for every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunJobRequest is the payload for both synchronous and asynchronous jobs.
type RunJobRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// RunJobResponse carries one answer per question, in question order.
type RunJobResponse struct {
	JobID   string            `json:"job_id"`
	Answers []domain.Decision `json:"answers"`
}

// SubmitJobResponse acknowledges an asynchronous submission.
type SubmitJobResponse struct {
	TaskID string           `json:"task_id"`
	Status domain.JobStatus `json:"status"`
}

// QueryRequest is a single interactive question against an existing collection.
type QueryRequest struct {
	Collection string `json:"collection"`
	Question   string `json:"question"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks))
	ready := true
	for name, check := range s.checks {
		if check == nil {
			continue
		}
		if err := check.Ping(ctx); err != nil {
			components[name] = err.Error()
			ready = false
			continue
		}
		components[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "components": components})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Job endpoints

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	var req RunJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.jobService.Process(r.Context(), req.Documents, req.Questions)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RunJobResponse{JobID: result.JobID, Answers: result.Answers})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req RunJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.jobService.Submit(r.Context(), req.Documents, req.Questions)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitJobResponse{
		TaskID: task.ID,
		Status: task.Status.JobStatus(),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "missing task id")
		return
	}

	report, err := s.jobService.Status(r.Context(), taskID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Interactive query endpoint

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := s.jobService.Ask(r.Context(), req.Collection, req.Question)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// writeServiceError maps domain sentinels onto HTTP statuses. The error text
// is passed through: the sentinels carry operator-safe messages only.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDownload), errors.Is(err, domain.ErrIngestion):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
