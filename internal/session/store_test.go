package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb), mr
}

func TestStore_CreateAndResolve(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "subject-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "subject-123", userID)
}

func TestStore_TokensAreOpaqueAndUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t1, err := store.Create(ctx, "subject-123")
	require.NoError(t, err)
	t2, err := store.Create(ctx, "subject-123")
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	assert.NotContains(t, t1, "subject-123")
}

func TestStore_ResolveUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_ResolveEmptyToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_ResolveExpiredSession(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "subject-123")
	require.NoError(t, err)

	mr.FastForward(TTL + 1)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Destroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, "subject-123")
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	// Destroying again is a no-op, not an error.
	assert.NoError(t, store.Destroy(ctx, token))
}

func TestStore_NilClient(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.Create(ctx, "subject-123")
	assert.Error(t, err)

	_, err = store.Resolve(ctx, "anything")
	assert.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, store.Destroy(ctx, "anything"))
}
