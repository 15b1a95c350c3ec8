// File: internal/usecase/fakes_test.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Clock

// fakeClock fires every wait immediately and advances its own time instead.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	total time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.total += d
	now := c.now
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func (c *fakeClock) waited() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// --- Share card backend

// fakeShareCardAPI answers queries from a script; after the script runs out the
// last status repeats.
type fakeShareCardAPI struct {
	clock *fakeClock

	mu        sync.Mutex
	jobID     model.ID
	submitErr error
	statuses  []model.ShareCardStatus
	failAt    int // 1-based query that fails with queryErr
	queryErr  error
	block     bool
	blocked   chan struct{}
	submitted int
	calls     []time.Time
	last      model.JobHandle
}

func newFakeShareCardAPI() *fakeShareCardAPI {
	return &fakeShareCardAPI{clock: newFakeClock(), jobID: "abc123", blocked: make(chan struct{}, 16)}
}

func (f *fakeShareCardAPI) GenerateShareCard(ctx context.Context, movieID model.ID) (model.JobHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	if f.submitErr != nil {
		return model.JobHandle{}, f.submitErr
	}
	return model.JobHandle{MovieID: movieID, JobID: f.jobID}, nil
}

func (f *fakeShareCardAPI) GetShareCardJob(ctx context.Context, movieID, jobID model.ID) (model.ShareCardStatus, error) {
	f.mu.Lock()
	f.calls = append(f.calls, f.clock.Now())
	f.last = model.JobHandle{MovieID: movieID, JobID: jobID}
	n := len(f.calls)
	block := f.block
	f.mu.Unlock()

	if block {
		f.blocked <- struct{}{}
		<-ctx.Done()
		return model.ShareCardStatus{}, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == n {
		return model.ShareCardStatus{}, f.queryErr
	}
	if len(f.statuses) == 0 {
		return model.ShareCardStatus{}, domain.ErrNotFound
	}
	if n-1 < len(f.statuses) {
		return f.statuses[n-1], nil
	}
	return f.statuses[len(f.statuses)-1], nil
}

func (f *fakeShareCardAPI) queryTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.calls...)
}

func (f *fakeShareCardAPI) lastQuery() model.JobHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeShareCardAPI) submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

func (f *fakeShareCardAPI) setBlock(b bool) {
	f.mu.Lock()
	f.block = b
	f.mu.Unlock()
}

func (f *fakeShareCardAPI) setStatuses(ss []model.ShareCardStatus) {
	f.mu.Lock()
	f.statuses = ss
	f.mu.Unlock()
}

func (f *fakeShareCardAPI) waitBlocked(t *testing.T) {
	t.Helper()
	select {
	case <-f.blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("no query reached the backend")
	}
}

// --- Notifier

type notification struct {
	handle  model.JobHandle
	outcome model.PollOutcome
	err     error
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

var _ adapter.Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) NotifyShareCard(_ context.Context, h model.JobHandle, o model.PollOutcome, err error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{handle: h, outcome: o, err: err})
	return nil
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

// --- Account backend

// fakeAccountAPI stands in for the auth, user and review endpoints.
type fakeAccountAPI struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	googleURL  string
	revokeErr  error
	revoked    []string

	users     map[model.ID]*model.User
	lastCred  *model.Credential
	lastPatch model.UserPatch
	reviews   []model.NewReview
	deleted   []model.ID
}

func newFakeAccountAPI() *fakeAccountAPI {
	return &fakeAccountAPI{users: make(map[model.ID]*model.User)}
}

func (f *fakeAccountAPI) Login(_ context.Context, l model.Login) (*model.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &model.LoginResult{AccessToken: f.loginToken, TokenType: "bearer"}, nil
}

func (f *fakeAccountAPI) GoogleAuthURL(context.Context) (*model.GoogleAuth, error) {
	return &model.GoogleAuth{AuthURL: f.googleURL, State: "st"}, nil
}

func (f *fakeAccountAPI) RevokeGoogle(_ context.Context, cred *model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, cred.GoogleToken)
	return f.revokeErr
}

func (f *fakeAccountAPI) Register(_ context.Context, r model.Registration) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: model.ID(fmt.Sprint(len(f.users) + 1)), Email: r.Email, Username: r.Username, FullName: r.FullName, IsActive: true}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeAccountAPI) GetUser(_ context.Context, cred *model.Credential, id model.ID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCred = cred
	u, ok := f.users[id]
	if !ok {
		return nil, &model.APIError{StatusCode: 404, Status: "Not Found", Detail: "User not found", Parsed: true}
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAccountAPI) UpdateUser(_ context.Context, cred *model.Credential, id model.ID, patch model.UserPatch) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCred = cred
	f.lastPatch = patch
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.FullName != "" {
		u.FullName = patch.FullName
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	cp := *u
	return &cp, nil
}

func (f *fakeAccountAPI) DeleteUser(_ context.Context, cred *model.Credential, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCred = cred
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeAccountAPI) ListReviews(context.Context, int, int) (*model.Page[model.Review], error) {
	return &model.Page[model.Review]{}, nil
}

func (f *fakeAccountAPI) GetReview(context.Context, model.ID) (*model.Review, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeAccountAPI) DeleteReview(_ context.Context, id model.ID) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeAccountAPI) CreateReview(_ context.Context, cred *model.Credential, r model.NewReview) (*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCred = cred
	f.reviews = append(f.reviews, r)
	return &model.Review{ID: model.ID(fmt.Sprint(len(f.reviews))), MovieID: r.MovieID, UserID: r.UserID, Rating: r.Rating, Comment: r.Comment}, nil
}

// token mints a test JWT; the client never verifies signatures.
func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
