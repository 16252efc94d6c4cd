package presence

import (
	"context"
	"testing"
	"time"

	"market_chat_server/internal/dao/redis/redistest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleDisconnectKeepsNewerSession(t *testing.T) {
	cache, mr := redistest.New(t)
	tr := NewTracker(cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, tr.SetOnline(ctx, "U1", "conn-a"))
	require.NoError(t, tr.SetOnline(ctx, "U1", "conn-b"))
	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", "R1"))

	removed, err := tr.ClearOnline(ctx, "U1", "conn-a")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, tr.IsOnline(ctx, "U1"))
	room, err := tr.GetCurrentRoom(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "R1", room)

	removed, err = tr.ClearOnline(ctx, "U1", "conn-b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, tr.IsOnline(ctx, "U1"))
	assert.False(t, mr.Exists("currentroom:U1"))
}

func TestSessionExpiresWithoutHeartbeat(t *testing.T) {
	cache, mr := redistest.New(t)
	tr := NewTracker(cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, tr.SetOnline(ctx, "U1", "conn-a"))
	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", "R1"))
	mr.FastForward(2 * time.Minute)

	assert.False(t, tr.IsOnline(ctx, "U1"))
	room, err := tr.GetCurrentRoom(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, room)
}

func TestRefreshExtendsAndReclaims(t *testing.T) {
	cache, mr := redistest.New(t)
	tr := NewTracker(cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, tr.SetOnline(ctx, "U1", "conn-a"))
	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", "R1"))
	mr.FastForward(50 * time.Second)

	ok, err := tr.Refresh(ctx, "U1", "conn-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("session:U1"))
	assert.Equal(t, time.Minute, mr.TTL("currentroom:U1"))

	// 其他连接持有时不抢占
	ok, err = tr.Refresh(ctx, "U1", "conn-b")
	require.NoError(t, err)
	assert.False(t, ok)

	// 键过期后由存活连接重新认领
	mr.FastForward(2 * time.Minute)
	ok, err = tr.Refresh(ctx, "U1", "conn-b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tr.IsOnline(ctx, "U1"))
}

func TestCurrentRoomPointer(t *testing.T) {
	cache, _ := redistest.New(t)
	tr := NewTracker(cache, time.Minute)
	ctx := context.Background()

	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", "R1"))
	require.NoError(t, tr.ClearCurrentRoomIf(ctx, "U1", "R2"))
	room, _ := tr.GetCurrentRoom(ctx, "U1")
	assert.Equal(t, "R1", room)

	require.NoError(t, tr.ClearCurrentRoomIf(ctx, "U1", "R1"))
	room, _ = tr.GetCurrentRoom(ctx, "U1")
	assert.Empty(t, room)

	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", "R3"))
	require.NoError(t, tr.SetCurrentRoom(ctx, "U1", ""))
	room, _ = tr.GetCurrentRoom(ctx, "U1")
	assert.Empty(t, room)
}
