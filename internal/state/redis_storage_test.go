package state

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStorage_SetAndGet(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	ctx := context.Background()
	session := &Session{
		ChatID:       123,
		CurrentState: StateAwaitGroupLink,
		Context:      map[string]string{"group_name": "News"},
	}

	err := storage.SetSession(ctx, session.ChatID, session)
	assert.NoError(t, err)

	result, err := storage.GetSession(ctx, session.ChatID)
	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, session.ChatID, result.ChatID)
		assert.Equal(t, session.CurrentState, result.CurrentState)
		assert.Equal(t, session.Context, result.Context)
		assert.False(t, result.UpdatedAt.IsZero())
	}
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	session, err := storage.GetSession(context.Background(), 999)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorage_ClearSession(t *testing.T) {
	storage := NewRedisStorage(setupTestRedis(t), testLogger())

	ctx := context.Background()
	session := &Session{ChatID: 456, CurrentState: StateMainMenu}

	err := storage.SetSession(ctx, session.ChatID, session)
	assert.NoError(t, err)

	err = storage.ClearSession(ctx, session.ChatID)
	assert.NoError(t, err)

	result, err := storage.GetSession(ctx, session.ChatID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStorage_CopiesAreIndependent(t *testing.T) {
	storage := NewMemoryStorage()
	ctx := context.Background()

	session := &Session{
		ChatID:       1,
		CurrentState: StateMainMenu,
		Context:      map[string]string{"group_name": "Original"},
	}
	assert.NoError(t, storage.SetSession(ctx, session.ChatID, session))

	first, err := storage.GetSession(ctx, 1)
	assert.NoError(t, err)
	first.Context["group_name"] = "Mutated"

	second, err := storage.GetSession(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Original", second.Context["group_name"])
}
