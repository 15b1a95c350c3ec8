package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*Notifier)(nil)

// Notifier prints share card outcomes, one line per session, as text or JSON.
type Notifier struct {
	mu   sync.Mutex
	out  io.Writer
	json bool
}

func NewNotifier(out io.Writer, asJSON bool) *Notifier {
	return &Notifier{out: out, json: asJSON}
}

type line struct {
	MovieID  model.ID          `json:"movie_id"`
	JobID    model.ID          `json:"job_id,omitempty"`
	Outcome  model.OutcomeKind `json:"outcome"`
	Status   model.JobStatus   `json:"status,omitempty"`
	CardURL  string            `json:"card_url,omitempty"`
	Attempts int               `json:"attempts"`
	Error    string            `json:"error,omitempty"`
}

func (n *Notifier) NotifyShareCard(_ context.Context, h model.JobHandle, o model.PollOutcome, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.json {
		l := line{MovieID: h.MovieID, JobID: h.JobID, Outcome: o.Kind, Status: o.Status, CardURL: o.CardURL, Attempts: o.Attempts}
		if err != nil {
			l.Error = err.Error()
		}
		return json.NewEncoder(n.out).Encode(l)
	}

	if err != nil {
		_, werr := fmt.Fprintf(n.out, "[movie %s] Error: %v\n", h.MovieID, err)
		return werr
	}
	_, werr := fmt.Fprintf(n.out, "[movie %s] %s\n", h.MovieID, o.String())
	return werr
}
