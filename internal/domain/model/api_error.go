package model

import (
	"fmt"
	"net/http"

	"composite-client/internal/domain"
)

// APIError is a non-success response from the composite service.
type APIError struct {
	StatusCode int
	Status     string // http status text, e.g. "Not Found"
	Detail     string // backend "detail" field, empty when absent
	Parsed     bool   // whether the error body was JSON at all
}

// Error follows the backend contract: the structured detail when present; the
// bare status text when the body could not be parsed; otherwise "HTTP <code>: <text>".
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if !e.Parsed && e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// SubmissionError reports a rejected share card submission.
type SubmissionError struct {
	MovieID ID
	Err     error
}

func (e *SubmissionError) Error() string { return e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }

// PollError reports a failed status query. Polling stops when it occurs.
type PollError struct {
	MovieID ID
	JobID   ID
	Attempt int
	Err     error
}

func (e *PollError) Error() string { return e.Err.Error() }
func (e *PollError) Unwrap() error { return e.Err }
