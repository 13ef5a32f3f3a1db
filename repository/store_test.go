package repository

import (
	"context"
	"testing"
	"time"

	"go-cubirds/engine"
	"go-cubirds/entities"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStore(rdb, time.Hour, nil), mr
}

func newGame() engine.GameState {
	return engine.New(engine.WithSeed(1)).InitializeGame([engine.PlayerCount]string{"Ada", "Grace"}, false)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	state := newGame()

	v1, err := store.SaveSnapshot(ctx, "r1", state)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	got, version, err := store.LoadSnapshot(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, v1, version)
	assert.Equal(t, state, got)

	v2, err := store.SaveSnapshot(ctx, "r1", state)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	assert.True(t, mr.Exists("room:r1:state"))
	assert.Greater(t, mr.TTL("room:r1:state"), time.Duration(0))
}

func TestLoadSnapshotNormalizes(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("room:r1:state",
		`{"players":[{"id":0,"name":"A"},{"id":1,"name":"B"}],"rows":[null,null,null,null]}`))

	got, version, err := store.LoadSnapshot(context.Background(), "r1")
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.Equal(t, engine.PhasePlay, got.Phase)
	assert.Equal(t, engine.StatusPlaying, got.Status)
	assert.Equal(t, 1, got.Round)
	assert.NotNil(t, got.Deck)
	assert.NotNil(t, got.Players[0].Hand)
	for _, row := range got.Rows {
		assert.NotNil(t, row)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, _, err := store.LoadSnapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomInfo(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	info := entities.RoomInfo{
		RoomID:    "r1",
		HostName:  "Ada",
		HostID:    "p-ada",
		GuestName: "Waiting...",
		AI:        false,
		CreatedAt: 1700000000,
	}
	require.NoError(t, store.SaveRoomInfo(ctx, info))

	got, err := store.GetRoomInfo(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, info, got)

	info.GuestJoined = true
	info.GuestName = "Grace"
	require.NoError(t, store.SaveRoomInfo(ctx, info))
	got, err = store.GetRoomInfo(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.GuestJoined)
	assert.True(t, got.Full())

	_, err = store.GetRoomInfo(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListAndDeleteRooms(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		require.NoError(t, store.SaveRoomInfo(ctx, entities.RoomInfo{RoomID: id}))
		_, err := store.SaveSnapshot(ctx, id, newGame())
		require.NoError(t, err)
	}

	ids, err := store.ListRoomIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, store.DeleteRoom(ctx, "a"))
	assert.False(t, mr.Exists("room:a:state"))
	assert.False(t, mr.Exists("room:a:info"))
	assert.True(t, mr.Exists("room:b:state"))

	ids, err = store.ListRoomIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	assert.ErrorIs(t, store.DeleteRoom(ctx, "a"), ErrRoomNotFound)
}

func TestLock(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Lock(ctx, "r1")
	require.NoError(t, err)

	_, err = store.Lock(ctx, "r1")
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, store.Unlock(ctx, "r1", "someone-else"))
	assert.True(t, mr.Exists("lock:room:r1"), "foreign token must not release")

	require.NoError(t, store.Unlock(ctx, "r1", token))
	assert.False(t, mr.Exists("lock:room:r1"))

	_, err = store.Lock(ctx, "r1")
	require.NoError(t, err)
	mr.FastForward(lockTTL + time.Second)
	_, err = store.Lock(ctx, "r1")
	assert.NoError(t, err, "lock expires")
}

func TestSubscribe(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := store.Subscribe(ctx, "r1")
	require.NoError(t, err)

	state := newGame()
	version, err := store.SaveSnapshot(ctx, "r1", state)
	require.NoError(t, err)

	select {
	case snap := <-updates:
		assert.Equal(t, "r1", snap.RoomID)
		assert.Equal(t, version, snap.Version)
		assert.Equal(t, state, snap.State)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}

	cancel()
	select {
	case _, open := <-updates:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
