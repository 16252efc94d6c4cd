package readstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"market_chat_server/internal/dao/redis/redistest"
	"market_chat_server/internal/service/presence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarker struct {
	calls   int
	latest  uint
	upTo    uint
	err     error
	markErr error
}

func (f *fakeMarker) LatestId(roomId string) (uint, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.latest, nil
}

func (f *fakeMarker) MarkReadUpTo(roomId, readerId string, maxId uint) (int64, error) {
	f.calls++
	f.upTo = maxId
	if f.markErr != nil {
		return 0, f.markErr
	}
	return 3, nil
}

func newTracker(t *testing.T) (*Tracker, *presence.Tracker) {
	cache, _ := redistest.New(t)
	p := presence.NewTracker(cache, time.Minute)
	return NewTracker(cache, p, time.Hour), p
}

func TestIncrementSkippedWhileViewingRoom(t *testing.T) {
	tr, p := newTracker(t)
	ctx := context.Background()

	require.NoError(t, p.SetCurrentRoom(ctx, "U2", "R1"))
	incremented, err := tr.IncrementUnread(ctx, "R1", "U2")
	require.NoError(t, err)
	assert.False(t, incremented)

	_, found, err := tr.GetUnread(ctx, "R1", "U2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncrementWhenViewingAnotherRoom(t *testing.T) {
	tr, p := newTracker(t)
	ctx := context.Background()

	require.NoError(t, p.SetCurrentRoom(ctx, "U2", "R9"))
	for i := 0; i < 3; i++ {
		incremented, err := tr.IncrementUnread(ctx, "R1", "U2")
		require.NoError(t, err)
		assert.True(t, incremented)
	}

	n, found, err := tr.GetUnread(ctx, "R1", "U2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), n)
}

func TestReconcileResetsCacheAndMarksDurably(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	_, err := tr.IncrementUnread(ctx, "R1", "U1")
	require.NoError(t, err)

	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	marker := &fakeMarker{latest: 42}
	marked, err := tr.Reconcile(ctx, marker, "R1", "U1", at)
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)
	assert.Equal(t, 1, marker.calls)
	assert.Equal(t, uint(42), marker.upTo)

	n, found, err := tr.GetUnread(ctx, "R1", "U1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, n)

	last, found, err := tr.GetLastRead(ctx, "R1", "U1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, last.Equal(at))
}

func TestReconcilePropagatesDurableFailure(t *testing.T) {
	tr, _ := newTracker(t)
	boom := errors.New("db down")

	_, err := tr.Reconcile(context.Background(), &fakeMarker{err: boom}, "R1", "U1", time.Now())
	assert.ErrorIs(t, err, boom)

	_, err = tr.Reconcile(context.Background(), &fakeMarker{latest: 1, markErr: boom}, "R1", "U1", time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestReconcileEmptyRoomSkipsUpdate(t *testing.T) {
	tr, _ := newTracker(t)
	marker := &fakeMarker{}

	marked, err := tr.Reconcile(context.Background(), marker, "R1", "U1", time.Now())
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Zero(t, marker.calls)
}

func TestReconcileSurvivesCacheOutage(t *testing.T) {
	cache, mr := redistest.New(t)
	tr := NewTracker(cache, presence.NewTracker(cache, time.Minute), time.Hour)
	mr.Close()

	marker := &fakeMarker{latest: 7}
	marked, err := tr.Reconcile(context.Background(), marker, "R1", "U1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)
	assert.Equal(t, 1, marker.calls)
}

func TestDeleteState(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SetUnread(ctx, "R1", "U1", 4))
	require.NoError(t, tr.UpdateLastRead(ctx, "R1", "U1", time.Now()))

	require.NoError(t, tr.DeleteState(ctx, "R1", "U1"))

	_, found, err := tr.GetUnread(ctx, "R1", "U1")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = tr.GetLastRead(ctx, "R1", "U1")
	require.NoError(t, err)
	assert.False(t, found)
}
