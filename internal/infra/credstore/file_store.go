package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"
)

var _ repository.CredentialStore = (*FileStore)(nil)

const fileMode = 0o600

// FileStore keeps the credential in a single YAML file readable only by its owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultPath is <user config dir>/composite-client/credentials.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "composite-client", "credentials.yaml"), nil
}

// NewFileStore uses path, or DefaultPath when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(context.Context) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	var cred model.Credential
	if err := yaml.Unmarshal(b, &cred); err != nil {
		return nil, fmt.Errorf("parse credential %s: %w", s.path, err)
	}
	if !cred.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	return &cred, nil
}

// Save replaces the file atomically through a temp file in the same directory.
func (s *FileStore) Save(_ context.Context, cred *model.Credential) error {
	if !cred.Valid() {
		return domain.ErrInvalidArgument
	}
	b, err := yaml.Marshal(cred)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
