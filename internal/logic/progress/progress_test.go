package progress

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotBufferFlushAndRequeue(t *testing.T) {
	b := newSlotBuffer()
	b.Add(&SlotRecord{Slot: 1})
	b.Add(&SlotRecord{Slot: 2})
	assert.Equal(t, 2, b.Len())

	flushed := b.Flush()
	require.Len(t, flushed, 2)
	assert.Equal(t, 0, b.Len())

	b.Add(&SlotRecord{Slot: 3})
	b.Requeue(flushed)
	got := b.Flush()
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].Slot, got[1].Slot, got[2].Slot})
}

func TestManagerWithoutStores(t *testing.T) {
	pm := NewProgressManager(nil, nil, 30)
	ctx := context.Background()

	ok, err := pm.ShouldProcessSlot(ctx, 10, time.Now().Unix())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pm.ShouldProcessSlot(ctx, 10, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	assert.True(t, ok, "没有任何存储时旧 slot 也需要处理")

	require.NoError(t, pm.MarkSlot(ctx, &SlotRecord{Slot: 10, Status: SlotProcessed}))
	assert.Equal(t, 0, pm.Pending(), "没有 DB 时不缓冲")
	assert.NoError(t, pm.Flush(ctx))
}

func TestSlotStatusNames(t *testing.T) {
	assert.Equal(t, "processed", SlotProcessed.String())
	assert.Equal(t, "unknown", SlotStatus(9).String())
	assert.Equal(t, "grpc", SourceName(SourceGrpc))
	assert.Equal(t, "replay", SourceName(SourceReplay))
}

// 需要真实 Redis：REDIS_ADDR=127.0.0.1:6379
func TestRedisProgressStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisProgressStore(rdb, time.Minute)
	slot := uint64(time.Now().UnixNano())
	defer rdb.Del(ctx, slotKey(slot))

	status, err := store.GetSlotStatus(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, SlotUnknown, status)

	won, err := store.TryMarkPending(ctx, slot)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = store.TryMarkPending(ctx, slot)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, store.MarkSlotStatus(ctx, slot, SlotProcessed))
	status, err = store.GetSlotStatus(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, SlotProcessed, status)

	pm := NewProgressManager(store, nil, 1)
	ok, err := pm.ShouldProcessSlot(ctx, slot, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)
	assert.False(t, ok)
}
