package repository

import "context"

// SessionRegistry admits at most one active poll session per key.
type SessionRegistry interface {
	// Acquire claims key or fails with domain.ErrSessionActive. The returned
	// release func is safe to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
	// Active lists the currently held keys known to this registry.
	Active(ctx context.Context) ([]string, error)
}
