// File: internal/infra/redis/session_lock.go
package redis

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionKeyPrefix = "sharecard:session:"

var _ repository.SessionRegistry = (*SessionLocker)(nil)

// SessionLocker is a SessionRegistry shared by every client process that talks
// to the same redis. Each key is a SET NX lease holding a random token.
type SessionLocker struct {
	cli *redis.Client
	ttl time.Duration
	log *zerolog.Logger
}

func NewSessionLocker(c *Client, ttl time.Duration, logger *zerolog.Logger) *SessionLocker {
	l := logger.With().Str("component", "SessionLocker").Logger()
	return &SessionLocker{cli: c.cli, ttl: ttl, log: &l}
}

func sessionKey(key string) string { return sessionKeyPrefix + key }

// TryLock takes the lease or fails with domain.ErrSessionActive when someone
// else holds it. Transport errors are retried a few times.
func (l *SessionLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	var lastErr error
	for i := 0; i < 3; i++ {
		ok, err := l.cli.SetNX(ctx, sessionKey(key), token, ttl).Result()
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		if !ok {
			return "", domain.ErrSessionActive
		}
		return token, nil
	}
	return "", lastErr
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

// Unlock releases the lease only if token still owns it.
func (l *SessionLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{sessionKey(key)}, token).Result()
	return err
}

var luaRenew = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end`)

// Renew extends the lease to ttl if token still owns it and reports whether it did.
func (l *SessionLocker) Renew(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	n, err := luaRenew.Run(ctx, l.cli, []string{sessionKey(key)}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Acquire takes the lease and keeps extending it every ttl/3 until release is
// called, so a session may poll for longer than ttl. A crashed holder stops
// renewing and its lease lapses after at most ttl.
func (l *SessionLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := l.TryLock(ctx, key, l.ttl)
	if err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// the caller's context may be cancelled by now
			uctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.Unlock(uctx, key, token); err != nil {
				l.log.Warn().Err(err).Str("key", key).Msg("release session lock")
			}
		})
	}, nil
}

func (l *SessionLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	every := l.ttl / 3
	if every <= 0 {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), every)
			ok, err := l.Renew(ctx, key, token, l.ttl)
			cancel()
			switch {
			case err != nil:
				l.log.Warn().Err(err).Str("key", key).Msg("renew session lock")
			case !ok:
				l.log.Warn().Str("key", key).Msg("session lock lost")
				return
			}
		}
	}
}

func (l *SessionLocker) Active(ctx context.Context) ([]string, error) {
	var keys []string
	iter := l.cli.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), sessionKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear drops every session lease; used by test setup to recover from crashed runs.
func (l *SessionLocker) Clear(ctx context.Context) (int, error) {
	keys, err := l.Active(ctx)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = sessionKey(k)
	}
	n, err := l.cli.Del(ctx, full...).Result()
	return int(n), err
}
