package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type hookedResourceRepo struct {
	*memResourceRepo
	beforeIncrement func()
	fail            bool
}

func (r *hookedResourceRepo) IncrementClicks(ctx context.Context, id uint, delta int) error {
	if r.beforeIncrement != nil {
		hook := r.beforeIncrement
		r.beforeIncrement = nil
		hook()
	}
	if r.fail {
		return errors.New("database unavailable")
	}
	return r.memResourceRepo.IncrementClicks(ctx, id, delta)
}

func setupClickCounter(t *testing.T) (*miniredis.Miniredis, *hookedResourceRepo, *clickCounter) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo := &hookedResourceRepo{memResourceRepo: newMemResourceRepo()}
	counter := NewClickCounter(rdb, repo, zap.NewNop()).(*clickCounter)
	return mr, repo, counter
}

func TestClickSyncFlushesBufferedClicks(t *testing.T) {
	mr, repo, counter := setupClickCounter(t)
	ctx := context.Background()

	require.NoError(t, counter.RecordClick(ctx, 7))
	require.NoError(t, counter.RecordClick(ctx, 7))
	require.NoError(t, counter.RecordClick(ctx, 9))

	counter.syncClicksToDB(ctx)

	assert.Equal(t, 2, repo.clicks[7])
	assert.Equal(t, 1, repo.clicks[9])
	assert.False(t, mr.Exists(clicksKey(7)))
	assert.False(t, mr.Exists(pendingClicksKey))
}

func TestClickDuringSyncStaysPending(t *testing.T) {
	mr, repo, counter := setupClickCounter(t)
	ctx := context.Background()

	require.NoError(t, counter.RecordClick(ctx, 7))
	repo.beforeIncrement = func() {
		require.NoError(t, counter.RecordClick(ctx, 7))
	}

	counter.syncClicksToDB(ctx)

	assert.Equal(t, 1, repo.clicks[7])
	pending, err := mr.SIsMember(pendingClicksKey, "7")
	require.NoError(t, err)
	assert.True(t, pending, "the late click must still be queued")

	counter.syncClicksToDB(ctx)
	assert.Equal(t, 2, repo.clicks[7])
	assert.False(t, mr.Exists(pendingClicksKey))
}

func TestClickSyncRestoresCountOnFailure(t *testing.T) {
	mr, repo, counter := setupClickCounter(t)
	ctx := context.Background()

	require.NoError(t, counter.RecordClick(ctx, 7))
	require.NoError(t, counter.RecordClick(ctx, 7))
	repo.fail = true

	counter.syncClicksToDB(ctx)

	got, err := mr.Get(clicksKey(7))
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	pending, err := mr.SIsMember(pendingClicksKey, "7")
	require.NoError(t, err)
	assert.True(t, pending)

	repo.fail = false
	counter.syncClicksToDB(ctx)
	assert.Equal(t, 2, repo.clicks[7])
}

func TestClickCounterWithoutRedisWritesThrough(t *testing.T) {
	repo := newMemResourceRepo()
	counter := NewClickCounter(nil, repo, zap.NewNop())

	require.NoError(t, counter.RecordClick(context.Background(), 7))
	assert.Equal(t, 1, repo.clicks[7])
}
