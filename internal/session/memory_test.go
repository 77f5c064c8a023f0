package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
)

func testKey() Key {
	return Key{UserID: 1, EnrollmentID: 2, Mode: "normal"}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "practice:1:2:normal", testKey().String())
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	store := NewMemoryStore()

	state, err := store.Get(context.Background(), testKey())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestMemoryStoreReplace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey()

	require.NoError(t, store.Replace(ctx, key, &State{Window: []int64{1, 2}, Pool: []int64{3}}))

	state, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, []int64{1, 2}, state.Window)
	assert.Equal(t, []int64{3}, state.Pool)
	assert.Equal(t, int64(1), state.Version)

	// Replace supersedes whatever was there, version starts over
	require.NoError(t, store.Replace(ctx, key, &State{Window: []int64{9}}))
	state, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, state.Window)
	assert.Equal(t, int64(1), state.Version)
}

func TestMemoryStoreSwap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey()

	require.NoError(t, store.Replace(ctx, key, &State{Window: []int64{1, 2}}))

	state, err := store.Get(ctx, key)
	require.NoError(t, err)

	state.Window = state.Window[1:]
	require.NoError(t, store.Swap(ctx, key, state, state.Version))

	updated, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, updated.Window)
	assert.Equal(t, int64(2), updated.Version)

	// The first reader's version is now stale
	err = store.Swap(ctx, key, state, state.Version)
	assert.ErrorIs(t, err, apperr.ErrStaleSession)
}

func TestMemoryStoreSwapAbsentState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey()

	// Absent state counts as version 0
	require.NoError(t, store.Swap(ctx, key, &State{Window: []int64{1}}, 0))

	state, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Version)

	// A swap against a deleted session fails rather than resurrecting it
	require.NoError(t, store.Delete(ctx, key))
	err = store.Swap(ctx, key, &State{Window: []int64{1}}, state.Version)
	assert.ErrorIs(t, err, apperr.ErrStaleSession)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey()

	require.NoError(t, store.Replace(ctx, key, &State{Window: []int64{1}}))
	require.NoError(t, store.Delete(ctx, key))

	state, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, state)

	// Deleting twice is fine
	require.NoError(t, store.Delete(ctx, key))
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := testKey()

	original := &State{Window: []int64{1, 2}, Pending: &PendingAnswer{MasteryID: 1, Answer: "a"}}
	require.NoError(t, store.Replace(ctx, key, original))

	// Mutating what we passed in or got back must not leak into the store
	original.Window[0] = 99

	state, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Window[0])

	state.Window[0] = 42
	state.Pending.Answer = "tampered"

	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Window[0])
	assert.Equal(t, "a", again.Pending.Answer)
}
