// internal/contextstore/redis_test.go
package contextstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, ttl, logger.NewNoOpLogger()), mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupRedisStore(t, 0)

	_, err := store.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CreateInitializesDiscovery(t *testing.T) {
	store, _ := setupRedisStore(t, 0)

	uc, err := store.Create(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", uc.SessionID)
	assert.Equal(t, models.StageDiscovery, uc.Stage)
	assert.Equal(t, 0, uc.Turns)

	loaded, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uc.SessionID, loaded.SessionID)
}

func TestRedisStore_CreateIsIdempotent(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)

	_, err = store.Update(ctx, "sess-1", func(uc *models.UserContext) error {
		uc.Turns = 3
		return nil
	})
	require.NoError(t, err)

	again, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Turns, "existing context must not be overwritten")
}

func TestRedisStore_UpdatePersistsMutation(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)

	updated, err := store.Update(ctx, "sess-1", func(uc *models.UserContext) error {
		uc.Profile.Citizenship = "citizen"
		uc.Profile.SetField("monthly_income", 6500)
		uc.AdvanceStage(models.StageQualification)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageQualification, updated.Stage)

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	income, ok := loaded.Profile.Field("monthly_income")
	require.True(t, ok)
	assert.Equal(t, 6500.0, income)
}

func TestRedisStore_ResultsSurviveRoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)

	res, err := models.NewResult(models.CategoryGrant, models.GrantPayload{
		Findings: []models.EligibilityFinding{
			{Scheme: "Enhanced CPF Housing Grant", Eligible: true, Amount: 40000},
		},
		TotalAmount: 40000,
	}, 0.9, "income within tier")
	require.NoError(t, err)

	_, err = store.Update(ctx, "sess-1", func(uc *models.UserContext) error {
		uc.MergeResult(res)
		return nil
	})
	require.NoError(t, err)

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, loaded.HasResult(models.CategoryGrant))

	var payload models.GrantPayload
	got := loaded.Results[models.CategoryGrant]
	require.NoError(t, got.DecodePayload(&payload))
	assert.Equal(t, 40000.0, payload.TotalAmount)
	assert.False(t, got.Degraded)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupRedisStore(t, 0)

	mr.Set(contextKey("sess-bad"), "{not json")

	_, err := store.Get(context.Background(), "sess-bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_TTLRefreshedOnWrite(t *testing.T) {
	store, mr := setupRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)
	assert.Greater(t, mr.TTL(contextKey("sess-1")), time.Duration(0))
}

// ==========================
// Serialization Tests
// ==========================

func TestRedisStore_ConcurrentUpdatesSameSession(t *testing.T) {
	store, _ := setupRedisStore(t, 0)
	ctx := context.Background()

	_, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "sess-1", func(uc *models.UserContext) error {
				uc.Turns++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, workers, loaded.Turns, "updates to one session must be serialized")
}

func TestMemoryStore_MatchesRedisContract(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	uc, err := store.Create(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.StageDiscovery, uc.Stage)

	updated, err := store.Update(ctx, "sess-1", func(uc *models.UserContext) error {
		uc.Turns = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Turns)

	// Mutating the returned copy must not leak into the store.
	updated.Turns = 100
	loaded, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Turns)
}
