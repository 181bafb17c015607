package progress

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// ProgressManager 统一封装 Redis + DB + 缓冲，控制进度判重与写入。
// redis 或 db 为 nil 时对应层被跳过。
type ProgressManager struct {
	redis           *RedisProgressStore
	db              *DBProgressStore
	buffer          *slotBuffer
	recentThreshold time.Duration // 新 block 的判断阈值
	logx.Logger
}

func NewProgressManager(redis *RedisProgressStore, db *DBProgressStore, recentThresholdSec int) *ProgressManager {
	if recentThresholdSec <= 0 {
		recentThresholdSec = 60
	}
	return &ProgressManager{
		redis:           redis,
		db:              db,
		buffer:          newSlotBuffer(),
		recentThreshold: time.Duration(recentThresholdSec) * time.Second,
		Logger:          logx.WithContext(context.Background()).WithFields(logx.Field("service", "progress")),
	}
}

// ShouldProcessSlot 判断是否需要处理该 slot：
//   - 近期 block 直接处理（实时流不会重复推送）
//   - 其余先查 Redis，未知再回落到 DB；已有终态的跳过
func (pm *ProgressManager) ShouldProcessSlot(ctx context.Context, slot uint64, blockTime int64) (bool, error) {
	if time.Since(time.Unix(blockTime, 0)) <= pm.recentThreshold {
		return true, nil
	}

	if pm.redis != nil {
		status, err := pm.redis.GetSlotStatus(ctx, slot)
		if err != nil {
			return false, err
		}
		if status == SlotProcessed || status == SlotInvalid {
			return false, nil
		}
	}

	if pm.db == nil {
		return true, nil
	}
	status, err := pm.db.GetSlotStatus(ctx, slot)
	if err != nil {
		return false, err
	}
	if status == SlotUnknown {
		return true, nil
	}
	if pm.redis != nil {
		if err := pm.redis.MarkSlotStatus(ctx, slot, status); err != nil {
			pm.Errorf("回填 redis 失败: slot=%d, err=%v", slot, err)
		}
	}
	return false, nil
}

// MarkSlot 标记 slot 的终态，同时写 Redis 并放入缓冲，待批量持久化
func (pm *ProgressManager) MarkSlot(ctx context.Context, record *SlotRecord) error {
	if record.Status != SlotProcessed && record.Status != SlotInvalid {
		return nil
	}
	if pm.redis != nil {
		if err := pm.redis.MarkSlotStatus(ctx, record.Slot, record.Status); err != nil {
			return err
		}
	}
	if pm.db != nil {
		pm.buffer.Add(record)
	}
	return nil
}

// Pending 待落库的记录数
func (pm *ProgressManager) Pending() int {
	return pm.buffer.Len()
}

// Flush 立即落库一次；失败的记录放回缓冲
func (pm *ProgressManager) Flush(ctx context.Context) error {
	if pm.db == nil {
		return nil
	}
	records := pm.buffer.Flush()
	if err := pm.db.BatchUpsertSlots(ctx, records); err != nil {
		pm.buffer.Requeue(records)
		return err
	}
	return nil
}

// StartFlushLoop 后台定时 flush，ctx 结束时做最后一次 flush
func (pm *ProgressManager) StartFlushLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := pm.Flush(finalCtx); err != nil {
				pm.Errorf("退出前 flush 失败: pending=%d, err=%v", pm.Pending(), err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := pm.Flush(ctx); err != nil {
				pm.Errorf("slot 进度落库失败: pending=%d, err=%v", pm.Pending(), err)
			}
		}
	}
}

// StartGCLoop 后台定时清理历史 slot 记录
func (pm *ProgressManager) StartGCLoop(ctx context.Context, interval time.Duration) {
	if pm.db == nil {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := pm.db.DeleteOldSlots(ctx)
				if err != nil {
					pm.Errorf("[GC] 清理历史 slot 失败: %v", err)
					continue
				}
				if n > 0 {
					pm.Infof("[GC] deleted %d old progress rows", n)
				}
			}
		}
	}()
}
