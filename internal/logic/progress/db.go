package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS parser_progress_slot (
	slot         BIGINT PRIMARY KEY,
	source       SMALLINT NOT NULL,
	block_time   BIGINT NOT NULL,
	status       SMALLINT NOT NULL,
	tx_count     INTEGER NOT NULL DEFAULT 0,
	record_count INTEGER NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertSQL = `
INSERT INTO parser_progress_slot (slot, source, block_time, status, tx_count, record_count, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (slot) DO UPDATE SET
	status = EXCLUDED.status,
	tx_count = EXCLUDED.tx_count,
	record_count = EXCLUDED.record_count,
	updated_at = NOW()`

// 保留约 7 天：7 × 86400 × 2.5 slot/s
const retainSlots = 1_512_000

// DBProgressStore 管理 slot 的 DB 存储。
// 写入用于持久记录进度，服务恢复后可用；不做高频判重，只作为 Redis 的后备。
type DBProgressStore struct {
	pool *pgxpool.Pool
}

// NewDBProgressStore 连接 Postgres 并确保表存在
func NewDBProgressStore(ctx context.Context, dsn string) (*DBProgressStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create progress table: %w", err)
	}
	return &DBProgressStore{pool: pool}, nil
}

func (d *DBProgressStore) Close() {
	d.pool.Close()
}

// GetSlotStatus 查询 slot 在 DB 中的状态，不存在返回 SlotUnknown
func (d *DBProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	var status int16
	err := d.pool.QueryRow(ctx, `SELECT status FROM parser_progress_slot WHERE slot = $1`, int64(slot)).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return SlotUnknown, nil
	}
	if err != nil {
		return SlotUnknown, fmt.Errorf("query slot %d: %w", slot, err)
	}
	return SlotStatus(status), nil
}

// BatchUpsertSlots 以 pgx.Batch 批量写入，slot 冲突时更新状态与计数
func (d *DBProgressStore) BatchUpsertSlots(ctx context.Context, records []*SlotRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(upsertSQL, int64(r.Slot), r.Source, r.BlockTime, int16(r.Status), r.TxCount, r.RecordCount)
	}
	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert %d slots: %w", len(records), err)
	}
	return nil
}

// LatestSlot 返回已记录的最大 slot，空表返回 0
func (d *DBProgressStore) LatestSlot(ctx context.Context) (uint64, error) {
	var latest *int64
	if err := d.pool.QueryRow(ctx, `SELECT MAX(slot) FROM parser_progress_slot`).Scan(&latest); err != nil {
		return 0, fmt.Errorf("fetch latest slot: %w", err)
	}
	if latest == nil {
		return 0, nil
	}
	return uint64(*latest), nil
}

// DeleteOldSlots 分批删除保留窗口之前的记录，返回删除总数
func (d *DBProgressStore) DeleteOldSlots(ctx context.Context) (int64, error) {
	latest, err := d.LatestSlot(ctx)
	if err != nil {
		return 0, err
	}
	if latest <= retainSlots {
		return 0, nil
	}
	safeSlot := int64(latest - retainSlots)

	const batchSize = 1000
	var total int64
	for {
		tag, err := d.pool.Exec(ctx, `
			DELETE FROM parser_progress_slot
			WHERE slot IN (SELECT slot FROM parser_progress_slot WHERE slot < $1 ORDER BY slot LIMIT $2)`,
			safeSlot, batchSize,
		)
		if err != nil {
			return total, fmt.Errorf("delete old slots: %w", err)
		}
		n := tag.RowsAffected()
		total += n
		if n < batchSize {
			return total, nil
		}
	}
}
