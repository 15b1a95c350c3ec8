package memory

import (
	"context"
	"sync"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"
)

var _ repository.CredentialStore = (*CredentialStore)(nil)

// CredentialStore holds the session for one process only.
type CredentialStore struct {
	mu   sync.Mutex
	cred *model.Credential
}

func NewCredentialStore() *CredentialStore { return &CredentialStore{} }

func (s *CredentialStore) Load(context.Context) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, domain.ErrNotAuthenticated
	}
	cp := *s.cred
	return &cp, nil
}

func (s *CredentialStore) Save(_ context.Context, cred *model.Credential) error {
	if !cred.Valid() {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cred
	s.cred = &cp
	return nil
}

func (s *CredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return nil
}
