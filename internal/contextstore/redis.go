// internal/contextstore/redis.go
package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"

	"github.com/redis/go-redis/v9"
)

const contextKeyPrefix = "advisor:context:"

// RedisStore persists UserContext values as JSON in Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *sessionLocks
	logger logger.Logger
}

// NewRedisStore creates a Redis-backed context store. A zero ttl means no
// expiry; otherwise the TTL is refreshed on every write.
func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		locks:  newSessionLocks(),
		logger: log,
	}
}

func contextKey(sessionID string) string {
	return contextKeyPrefix + sessionID
}

// Get loads the context for a session, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.UserContext, error) {
	raw, err := s.client.Get(ctx, contextKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.NewContextUnavailableError(err)
	}

	var uc models.UserContext
	if err := json.Unmarshal([]byte(raw), &uc); err != nil {
		return nil, errors.NewContextCorruptError(sessionID, err)
	}
	return &uc, nil
}

// Create initializes a session at the Discovery stage. An existing context
// is returned as-is rather than overwritten.
func (s *RedisStore) Create(ctx context.Context, sessionID string) (*models.UserContext, error) {
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	existing, err := s.Get(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	uc := models.NewUserContext(sessionID)
	if err := s.persist(ctx, uc); err != nil {
		return nil, err
	}

	s.logger.Info("Session context created", map[string]interface{}{
		"session_id": sessionID,
	})
	return uc, nil
}

// Update applies fn to the current context and persists the result. The
// read-modify-write is serialized per session.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn Mutation) (*models.UserContext, error) {
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	uc, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(uc); err != nil {
		return nil, fmt.Errorf("context mutation failed: %w", err)
	}
	uc.UpdatedAt = time.Now().UTC()

	if err := s.persist(ctx, uc); err != nil {
		return nil, err
	}
	return uc, nil
}

func (s *RedisStore) persist(ctx context.Context, uc *models.UserContext) error {
	raw, err := json.Marshal(uc)
	if err != nil {
		return errors.NewContextCorruptError(uc.SessionID, err)
	}
	if err := s.client.Set(ctx, contextKey(uc.SessionID), raw, s.ttl).Err(); err != nil {
		return errors.NewContextUnavailableError(err)
	}
	return nil
}
