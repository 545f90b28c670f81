// internal/contextstore/store.go
// Package contextstore owns the per-session UserContext: keyed lookup,
// creation, and serialized read-modify-write updates.
package contextstore

import (
	"context"
	"errors"
	"sync"

	"housing-advisor/internal/models"
)

// ErrNotFound is returned by Get when no context exists for the session.
var ErrNotFound = errors.New("session context not found")

// Mutation is a pure function applied to the current context under the
// session's write lock. Returning an error aborts the update.
type Mutation func(*models.UserContext) error

// Store is the context store contract. Updates to the same session are
// serialized; different sessions proceed independently.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.UserContext, error)
	Create(ctx context.Context, sessionID string) (*models.UserContext, error)
	Update(ctx context.Context, sessionID string, fn Mutation) (*models.UserContext, error)
}

// sessionLocks hands out one mutex per session so concurrent updates to the
// same session queue instead of interleaving.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *sessionLocks) lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}
