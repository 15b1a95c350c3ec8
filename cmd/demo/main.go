package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"composite-client/internal/application"
	"composite-client/internal/config"
	"composite-client/internal/domain/model"
	"composite-client/internal/infra/logging"
	"composite-client/internal/infra/memory"
	"composite-client/internal/usecase"
)

// fakeComposite renders a card after readyAfter status queries per job. Movie
// "404" does not exist and movie "stuck" never finishes.
type fakeComposite struct {
	readyAfter int

	mu      sync.Mutex
	queries map[string]int
}

func (f *fakeComposite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/composite"), "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "movies" && parts[2] == "generate-share-card" && r.Method == http.MethodPost:
		if parts[1] == "404" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Movie not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"job_id": "job-" + parts[1], "status": "PENDING"})
	case len(parts) == 4 && parts[0] == "movies" && parts[2] == "share-card-jobs":
		f.mu.Lock()
		f.queries[parts[3]]++
		n := f.queries[parts[3]]
		f.mu.Unlock()
		switch {
		case parts[1] == "stuck":
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "PROCESSING"})
		case n < f.readyAfter:
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "PENDING"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "COMPLETED", "card_url": "https://cards.example/" + parts[1] + ".png"})
		}
	default:
		http.NotFound(w, r)
	}
}

func main() {
	readyAfter := flag.Int("ready-after", 3, "status queries before a card is ready")
	interval := flag.Duration("interval", 300*time.Millisecond, "poll interval")
	flag.Parse()
	movies := flag.Args()
	if len(movies) == 0 {
		movies = []string{"1", "2", "404", "stuck"}
	}

	srv := httptest.NewServer(&fakeComposite{readyAfter: *readyAfter, queries: map[string]int{}})
	defer srv.Close()

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/composite"
	cfg.Poll.Interval = *interval
	cfg.Poll.MaxAttempts = 5
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, err := application.New(ctx, cfg, logger, application.Options{Out: os.Stdout, Credentials: memory.NewCredentialStore()})
	if err != nil {
		logger.Fatal().Err(err).Msg("wire application")
	}
	defer app.Close()

	var sessions []*usecase.PollSession
	for _, id := range movies {
		s, err := app.ShareCards.Start(ctx, model.ID(id), 0)
		if err != nil {
			logger.Error().Err(err).Str("movie_id", id).Msg("start session")
			continue
		}
		sessions = append(sessions, s)
	}

	// a second request for a running movie is refused
	if _, err := app.ShareCards.Start(ctx, model.ID(movies[0]), 0); err != nil {
		logger.Info().Err(err).Str("movie_id", movies[0]).Msg("duplicate request refused")
	}

	for _, s := range sessions {
		_, _ = s.Wait(ctx)
	}

	stuck, _ := app.Jobs.ListByOutcome(ctx, nil, model.OutcomeTimedOut, 10)
	for _, j := range stuck {
		logger.Info().Str("movie_id", j.MovieID.String()).Str("job_id", j.JobID.String()).Int("attempts", j.Attempts).Msg("left for the recheck worker")
	}
}
