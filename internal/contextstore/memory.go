// internal/contextstore/memory.go
package contextstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"housing-advisor/internal/models"
)

// MemoryStore is an in-process context store for development and tests.
// Values are stored as JSON so serialization behavior matches the Redis
// backend.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	locks *sessionLocks
}

// NewMemoryStore creates an empty in-memory context store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		locks: newSessionLocks(),
	}
}

// Get loads the context for a session, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.UserContext, error) {
	s.mu.RLock()
	raw, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var uc models.UserContext
	if err := json.Unmarshal(raw, &uc); err != nil {
		return nil, err
	}
	return &uc, nil
}

// Create initializes a session at the Discovery stage.
func (s *MemoryStore) Create(ctx context.Context, sessionID string) (*models.UserContext, error) {
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	existing, err := s.Get(ctx, sessionID)
	if err == nil {
		return existing, nil
	}

	uc := models.NewUserContext(sessionID)
	if err := s.persist(uc); err != nil {
		return nil, err
	}
	return uc, nil
}

// Update applies fn under the session's lock and persists the result.
func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn Mutation) (*models.UserContext, error) {
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	uc, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(uc); err != nil {
		return nil, err
	}
	uc.UpdatedAt = time.Now().UTC()

	if err := s.persist(uc); err != nil {
		return nil, err
	}
	return uc, nil
}

func (s *MemoryStore) persist(uc *models.UserContext) error {
	raw, err := json.Marshal(uc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[uc.SessionID] = raw
	s.mu.Unlock()
	return nil
}
