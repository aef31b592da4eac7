package handler

import (
	"time"

	"support-pipeline-go/internal/model"
)

// FetchRequest asks for a preview fetch over a lookback window. The pointer
// distinguishes an absent field, which selects the default window, from an
// explicit out-of-range value, which is rejected.
type FetchRequest struct {
	Hours *int `json:"hours"`
}

// ClassifyRequest classifies one email ad hoc. Pointers distinguish a
// missing field from an empty one.
type ClassifyRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// RunRequest triggers one full pipeline run. Hours follows the same
// absent-vs-explicit rule as FetchRequest.
type RunRequest struct {
	Hours *int `json:"hours"`
}

// FetchResponse previews fetched messages.
type FetchResponse struct {
	Count    int             `json:"count"`
	Messages []model.Message `json:"emails"`
}

// StatusResponse reports the last run and scheduler state.
type StatusResponse struct {
	LastRun          *model.RunResult `json:"last_run"`
	SchedulerRunning bool             `json:"scheduler_running"`
	NextRun          string           `json:"next_run,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
