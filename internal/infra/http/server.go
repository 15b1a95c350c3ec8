package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/domain/ports/repository"
	"composite-client/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Server is the admin endpoint of the long-running watch mode.
type Server struct {
	port     int
	sessions repository.SessionRegistry
	jobs     repository.ShareCardJobRepository
	health   adapter.HealthAPI
	log      *zerolog.Logger
	server   *http.Server
}

// NewServer builds the admin server. jobs and health may be nil; their routes
// then answer 404 and a bare "OK" respectively.
func NewServer(port int, sessions repository.SessionRegistry, jobs repository.ShareCardJobRepository, health adapter.HealthAPI, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "AdminServer").Logger()
	return &Server{port: port, sessions: sessions, jobs: jobs, health: health, log: &l}
}

// Handler returns the routed admin API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/sessions", s.handleSessions)
	r.Get("/jobs", s.handleJobs)
	r.Get("/jobs/{movieID}/{jobID}", s.handleJob)
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("admin server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	if s.health != nil {
		h, err := s.health.Health(r.Context())
		if err != nil {
			s.log.Warn().Err(err).Msg("backend health check failed")
			resp["backend"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["backend"] = h.Status
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	active, err := s.sessions.Active(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list active sessions")
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	if active == nil {
		active = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": active, "count": len(active)})
}

type jobView struct {
	MovieID   model.ID          `json:"movie_id"`
	JobID     model.ID          `json:"job_id"`
	Status    model.JobStatus   `json:"status"`
	Outcome   model.OutcomeKind `json:"outcome"`
	CardURL   string            `json:"card_url,omitempty"`
	Attempts  int               `json:"attempts"`
	LastError string            `json:"last_error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toView(j *model.ShareCardJob) jobView {
	return jobView{
		MovieID:   j.MovieID,
		JobID:     j.JobID,
		Status:    j.Status,
		Outcome:   j.Outcome,
		CardURL:   j.CardURL,
		Attempts:  j.Attempts,
		LastError: j.LastError,
		UpdatedAt: j.UpdatedAt,
	}
}

// handleJobs lists history by outcome: /jobs?outcome=timed_out&limit=20
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		http.NotFound(w, r)
		return
	}
	outcome := model.OutcomeKind(r.URL.Query().Get("outcome"))
	if outcome == "" {
		outcome = model.OutcomeTimedOut
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	jobs, err := s.jobs.ListByOutcome(r.Context(), nil, outcome, limit)
	if err != nil {
		s.log.Error().Err(err).Str("outcome", string(outcome)).Msg("list jobs")
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toView(j))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		http.NotFound(w, r)
		return
	}
	movieID := model.ID(chi.URLParam(r, "movieID"))
	jobID := model.ID(chi.URLParam(r, "jobID"))
	j, err := s.jobs.FindByID(r.Context(), nil, movieID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("find job")
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toView(j))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
