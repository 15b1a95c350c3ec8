package composite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain"
	"composite-client/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.APIConfig{
		BaseURL:   srv.URL + "/composite",
		Timeout:   5 * time.Second,
		UserAgent: "test",
	}, nil)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateShareCard(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the job handle", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/composite/movies/42/generate-share-card", r.URL.Path)
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": "abc123"})
		}))
		h, err := c.GenerateShareCard(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, model.JobHandle{MovieID: "42", JobID: "abc123"}, h)
	})

	t.Run("accepts integer job ids", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"job_id": 991})
		}))
		h, err := c.GenerateShareCard(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, model.ID("991"), h.JobID)
	})

	t.Run("missing job id", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"card_url": "https://x"})
		}))
		_, err := c.GenerateShareCard(ctx, "42")
		assert.ErrorIs(t, err, domain.ErrNoJobID)
	})

	t.Run("escapes path parameters", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/composite/movies/a%2Fb/generate-share-card", r.URL.EscapedPath())
			writeJSON(w, http.StatusOK, map[string]any{"job_id": "j"})
		}))
		_, err := c.GenerateShareCard(ctx, "a/b")
		require.NoError(t, err)
	})

	t.Run("rejects an empty movie id without a request", func(t *testing.T) {
		var hits int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
		}))
		_, err := c.GenerateShareCard(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Zero(t, atomic.LoadInt32(&hits))
	})
}

func TestErrorDecoding(t *testing.T) {
	cases := []struct {
		name    string
		code    int
		ctype   string
		body    string
		wantMsg string
	}{
		{"detail string", 404, "application/json", `{"detail":"Movie not found"}`, "Movie not found"},
		{"detail list", 422, "application/json", `{"detail":[{"msg":"field required"},{"msg":"bad rating"}]}`, "field required; bad rating"},
		{"json without detail", 500, "application/json", `{"error":"x"}`, "HTTP 500: Internal Server Error"},
		{"html body", 502, "text/html", `<html>bad gateway</html>`, "Bad Gateway"},
		{"empty body", 503, "", ``, "Service Unavailable"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cl := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if c.ctype != "" {
					w.Header().Set("Content-Type", c.ctype)
				}
				w.WriteHeader(c.code)
				_, _ = io.WriteString(w, c.body)
			}))
			_, err := cl.GetShareCardJob(context.Background(), "1", "2")
			require.Error(t, err)
			assert.Equal(t, c.wantMsg, err.Error())
			var apiErr *model.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, c.code, apiErr.StatusCode)
		})
	}
}

func TestGetShareCardJob(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/composite/movies/7/share-card-jobs/abc123", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"status": "COMPLETED", "card_url": "https://x/y.png"})
	}))
	st, err := c.GetShareCardJob(context.Background(), "7", "abc123")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, st.Status)
	assert.Equal(t, "https://x/y.png", st.CardURL)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(config.APIConfig{BaseURL: base, Timeout: time.Second}, nil)
	_, err := c.GetShareCardJob(context.Background(), "1", "2")
	require.Error(t, err)
	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}

func TestListMovies(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/composite/movies", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("page_size"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items":       []map[string]any{{"id": 1, "title": "Alien", "year": 1979}},
			"total_items": 13,
			"page":        2,
			"page_size":   12,
		})
	}))
	p, err := c.ListMovies(context.Background(), 2, 12)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Alien", p.Items[0].Title)
	assert.Equal(t, model.ID("1"), p.Items[0].ID)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext())
}

func TestGetMovieDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/composite/movie-details/5", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"movie": {"id": 5, "title": "Heat", "year": 1995, "genre": "Crime"},
			"cast_and_crew": [{"name": "Al Pacino", "role": "actor", "character_name": "Vincent Hanna"}],
			"reviews": {"items": [{"id": 9, "movie_id": 5, "user_id": 3, "rating": 5, "comment": "great", "created_at": "2024-01-02T03:04:05Z"}]}
		}`)
	}))
	d, err := c.GetMovieDetails(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "Heat", d.Movie.Title)
	require.Len(t, d.CastAndCrew, 1)
	assert.Equal(t, "actor", d.CastAndCrew[0].DisplayRole())
	require.Len(t, d.Reviews.Items, 1)
	assert.Equal(t, 5, d.Reviews.Items[0].Rating)
}

func TestAuthorisedCalls(t *testing.T) {
	cred := &model.Credential{AccessToken: "tok", GoogleToken: "gtok"}

	t.Run("create review sends bearer and numeric ids", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(3), body["user_id"])
			assert.Equal(t, float64(5), body["movie_id"])
			writeJSON(w, http.StatusCreated, map[string]any{"id": 77, "rating": 4})
		}))
		rv, err := c.CreateReview(context.Background(), cred, model.NewReview{UserID: "3", MovieID: "5", Rating: 4, Comment: "ok"})
		require.NoError(t, err)
		assert.Equal(t, model.ID("77"), rv.ID)
	})

	t.Run("update user sends only set fields", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"email":"new@example.com"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]any{"id": 3, "email": "new@example.com"})
		}))
		u, err := c.UpdateUser(context.Background(), cred, "3", model.UserPatch{Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", u.Email)
	})

	t.Run("delete user accepts 204", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		}))
		require.NoError(t, c.DeleteUser(context.Background(), cred, "3"))
	})

	t.Run("revoke google posts the google token", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/composite/auth/google/logout", r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			raw, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"google_token":"gtok"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		}))
		require.NoError(t, c.RevokeGoogle(context.Background(), cred))
	})

	t.Run("anonymous calls carry no authorization", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "fresh"})
		}))
		res, err := c.Login(context.Background(), model.Login{Email: "a@b.c", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "fresh", res.AccessToken)
	})
}

func TestHealthDefaultsToOK(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)
}

func TestMovieCacheDecorator(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "title": "Alien"})
	}))
	cached, err := NewMovieCacheDecorator(c, config.CacheConfig{TTL: time.Minute, MaxCost: 100})
	require.NoError(t, err)
	defer cached.Close()

	for i := 0; i < 3; i++ {
		m, err := cached.GetMovie(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Alien", m.Title)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	cached.Invalidate("1")
	_, err = cached.GetMovie(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
