package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	slotKeyPrefix  = "progress:parser:slot"
	defaultSlotTTL = 3 * 24 * time.Hour
)

// RedisProgressStore 管理 Redis 中的 slot 状态记录（幂等控制）
type RedisProgressStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisProgressStore 创建 Redis 判重管理器；ttl<=0 使用默认 3 天
func NewRedisProgressStore(rdb redis.UniversalClient, ttl time.Duration) *RedisProgressStore {
	if ttl <= 0 {
		ttl = defaultSlotTTL
	}
	return &RedisProgressStore{rdb: rdb, ttl: ttl}
}

func slotKey(slot uint64) string {
	return fmt.Sprintf("%s:%d", slotKeyPrefix, slot)
}

// GetSlotStatus 获取 slot 的状态（Unknown / Processed / Invalid / Pending）
func (r *RedisProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	val, err := r.rdb.Get(ctx, slotKey(slot)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return SlotUnknown, nil
	case err != nil:
		return SlotUnknown, fmt.Errorf("redis get slot %d: %w", slot, err)
	}
	switch status := SlotStatus(val); status {
	case SlotProcessed, SlotInvalid, SlotPending:
		return status, nil
	default:
		return SlotUnknown, nil
	}
}

// MarkSlotStatus 设置 slot 状态并刷新 TTL
func (r *RedisProgressStore) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	if err := r.rdb.Set(ctx, slotKey(slot), int(status), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot %d: %w", slot, err)
	}
	return nil
}

// TryMarkPending 仅当 slot 尚无状态时标记为处理中，返回是否抢到
func (r *RedisProgressStore) TryMarkPending(ctx context.Context, slot uint64) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, slotKey(slot), int(SlotPending), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx slot %d: %w", slot, err)
	}
	return ok, nil
}
