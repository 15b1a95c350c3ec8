package memory

import (
	"context"
	"sort"
	"sync"

	"composite-client/internal/domain"
	"composite-client/internal/domain/ports/repository"
)

var _ repository.SessionRegistry = (*SessionRegistry)(nil)

// SessionRegistry admits one holder per key within this process.
type SessionRegistry struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{held: make(map[string]uint64)}
}

func (r *SessionRegistry) Acquire(_ context.Context, key string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.held[key]; ok {
		return nil, domain.ErrSessionActive
	}
	r.seq++
	token := r.seq
	r.held[key] = token

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			// only the holder that acquired the key may free it
			if r.held[key] == token {
				delete(r.held, key)
			}
		})
	}, nil
}

func (r *SessionRegistry) Active(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.held))
	for k := range r.held {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
