package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory()

	rec := Record{ID: "p1", Name: "alice", Money: 1000}
	require.NoError(t, dir.Put(ctx, rec))

	got, err := dir.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// a second put replaces the record
	rec.Money = 500
	require.NoError(t, dir.Put(ctx, rec))
	got, err = dir.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 500, got.Money)
}

func TestMemoryGetUnknown(t *testing.T) {
	dir := NewMemory()
	_, err := dir.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetRoom(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory()
	require.NoError(t, dir.Put(ctx, Record{ID: "p1", Name: "alice", Money: 1000}))

	require.NoError(t, dir.SetRoom(ctx, "p1", "room-1"))
	got, err := dir.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", got.RoomID)

	require.NoError(t, dir.SetRoom(ctx, "p1", ""))
	got, err = dir.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.RoomID)

	assert.ErrorIs(t, dir.SetRoom(ctx, "ghost", "room-1"), ErrNotFound)
}

func TestMemorySetMoney(t *testing.T) {
	ctx := context.Background()
	dir := NewMemory()
	require.NoError(t, dir.Put(ctx, Record{ID: "p1", Name: "alice", Money: 1000}))

	require.NoError(t, dir.SetMoney(ctx, "p1", 1280))
	got, err := dir.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1280, got.Money)

	assert.ErrorIs(t, dir.SetMoney(ctx, "ghost", 10), ErrNotFound)
}
