package model

import (
	"strconv"
	"strings"
	"time"
)

// JobStatus is the backend-reported state of a share card job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

// IsCompleted reports the terminal-success value.
func (s JobStatus) IsCompleted() bool { return s == JobStatusCompleted }

// IsInProgress reports the non-terminal values that warrant another poll.
func (s JobStatus) IsInProgress() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// IsTerminal is true for every status that stops polling. Unrecognised values are
// terminal so a drifting backend contract cannot cause endless polling.
func (s JobStatus) IsTerminal() bool { return !s.IsInProgress() }

// JobHandle identifies a submitted job.
type JobHandle struct {
	MovieID ID `json:"movie_id"`
	JobID   ID `json:"job_id"`
}

// ShareCardStatus is a single status query response.
type ShareCardStatus struct {
	Status  JobStatus `json:"status"`
	CardURL string    `json:"card_url,omitempty"`
}

// OutcomeKind classifies how a poll session ended.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeTimedOut  OutcomeKind = "timed_out"
	OutcomeUnknown   OutcomeKind = "unknown"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeCancelled OutcomeKind = "cancelled"
	// OutcomeExhausted marks a job the recheck scheduler stopped polling.
	OutcomeExhausted OutcomeKind = "exhausted"
)

// PollOutcome is the result of a poll session. TimedOut and Unknown are outcomes,
// not errors: the backend calls themselves succeeded.
type PollOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	Status   JobStatus   `json:"status"`
	CardURL  string      `json:"card_url,omitempty"`
	Attempts int         `json:"attempts"`
}

func Completed(cardURL string, attempts int) PollOutcome {
	return PollOutcome{Kind: OutcomeCompleted, Status: JobStatusCompleted, CardURL: cardURL, Attempts: attempts}
}

func TimedOut(last JobStatus, attempts int) PollOutcome {
	return PollOutcome{Kind: OutcomeTimedOut, Status: last, Attempts: attempts}
}

func Unknown(status JobStatus, attempts int) PollOutcome {
	return PollOutcome{Kind: OutcomeUnknown, Status: status, Attempts: attempts}
}

func (o PollOutcome) String() string {
	switch o.Kind {
	case OutcomeCompleted:
		url := o.CardURL
		if url == "" {
			url = "N/A"
		}
		return "share card completed: " + url
	case OutcomeTimedOut:
		return "share card still processing after " + strconv.Itoa(o.Attempts) + " attempts. Status: " + string(o.Status)
	case OutcomeUnknown:
		return "share card status: " + string(o.Status)
	default:
		return "share card " + strings.ReplaceAll(string(o.Kind), "_", " ")
	}
}

// ShareCardJob is the client-side history record of one job.
type ShareCardJob struct {
	JobID     ID
	MovieID   ID
	Status    JobStatus
	Outcome   OutcomeKind
	CardURL   string
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewShareCardJob starts a history record for a freshly submitted job.
func NewShareCardJob(h JobHandle) *ShareCardJob {
	now := time.Now()
	return &ShareCardJob{
		JobID:     h.JobID,
		MovieID:   h.MovieID,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply records a finished session on the job.
func (j *ShareCardJob) Apply(o PollOutcome, err error) {
	j.Outcome = o.Kind
	if o.Status != "" {
		j.Status = o.Status
	}
	if o.CardURL != "" {
		j.CardURL = o.CardURL
	}
	j.Attempts += o.Attempts
	j.LastError = ""
	if err != nil {
		j.LastError = err.Error()
	}
	j.UpdatedAt = time.Now()
}
