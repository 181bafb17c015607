package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/types"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	poolMetaKeyPrefix  = "pool:meta:"
	defaultPoolMetaTTL = 7 * 24 * time.Hour
)

// PoolFetcher 从链上拉取池子元数据
type PoolFetcher interface {
	Fetch(ctx context.Context, pools []types.Pubkey) ([]cache.PoolInfo, error)
}

// PoolMetaService 为解析器补齐池子元数据：
// 先查 Redis 哈希 pool:meta:<id>，未命中再走 RPC，结果回写 Redis 并写入 PoolCache。
// rdb 为 nil 时只使用 fetcher。
type PoolMetaService struct {
	rdb     redis.UniversalClient
	fetcher PoolFetcher // 可为 nil
	cache   *cache.PoolCache
	ttl     time.Duration
	logx.Logger
}

func NewPoolMetaService(rdb redis.UniversalClient, fetcher PoolFetcher, pools *cache.PoolCache, ttl time.Duration) *PoolMetaService {
	if ttl <= 0 {
		ttl = defaultPoolMetaTTL
	}
	return &PoolMetaService{
		rdb:     rdb,
		fetcher: fetcher,
		cache:   pools,
		ttl:     ttl,
		Logger:  logx.WithContext(context.Background()).WithFields(logx.Field("service", "pool_meta")),
	}
}

func PoolMetaKey(pool types.Pubkey) string {
	return poolMetaKeyPrefix + pool.String()
}

// Fill 补齐 pools 的元数据，返回写入缓存的数量。
// 已在缓存中的池子直接跳过；部分失败时返回已写入的数量与错误。
func (s *PoolMetaService) Fill(ctx context.Context, pools []types.Pubkey) (int, error) {
	pending := make([]types.Pubkey, 0, len(pools))
	seen := make(map[types.Pubkey]struct{}, len(pools))
	for _, p := range pools {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := s.cache.Get(p); !ok {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	found, misses, err := s.loadFromRedis(ctx, pending)
	if err != nil {
		return 0, err
	}
	s.cache.SetBatch(found)
	filled := len(found)

	if len(misses) == 0 || s.fetcher == nil {
		return filled, nil
	}
	fetched, err := s.fetcher.Fetch(ctx, misses)
	if len(fetched) > 0 {
		s.cache.SetBatch(fetched)
		filled += len(fetched)
		if werr := s.store(ctx, fetched); werr != nil {
			s.Errorf("回写 pool meta 失败: count=%d, err=%v", len(fetched), werr)
		}
	}
	if err != nil {
		return filled, fmt.Errorf("fetch %d pools: %w", len(misses), err)
	}
	if n := len(misses) - len(fetched); n > 0 {
		s.Infof("仍有 %d 个池子缺少元数据", n)
	}
	return filled, nil
}

func (s *PoolMetaService) loadFromRedis(ctx context.Context, pools []types.Pubkey) ([]cache.PoolInfo, []types.Pubkey, error) {
	if s.rdb == nil {
		return nil, pools, nil
	}
	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(pools))
	for i, p := range pools {
		cmds[i] = pipe.HGetAll(ctx, PoolMetaKey(p))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, nil, fmt.Errorf("redis pipeline hgetall: %w", err)
	}

	found := make([]cache.PoolInfo, 0, len(pools))
	var misses []types.Pubkey
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			misses = append(misses, pools[i])
			continue
		}
		info, err := PoolInfoFromHash(pools[i], fields)
		if err != nil {
			s.Errorf("pool meta 格式错误: pool=%s, err=%v", pools[i], err)
			misses = append(misses, pools[i])
			continue
		}
		found = append(found, info)
	}
	return found, misses, nil
}

func (s *PoolMetaService) store(ctx context.Context, infos []cache.PoolInfo) error {
	if s.rdb == nil {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for _, info := range infos {
		key := PoolMetaKey(info.Pool)
		pipe.HSet(ctx, key, PoolInfoToHash(info))
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// PoolInfoToHash 编码为 Redis 哈希字段
func PoolInfoToHash(info cache.PoolInfo) map[string]any {
	return map[string]any{
		"base_mint":      info.BaseMint.String(),
		"quote_mint":     info.QuoteMint.String(),
		"lp_mint":        info.LpMint.String(),
		"base_vault":     info.BaseVault.String(),
		"quote_vault":    info.QuoteVault.String(),
		"base_decimals":  int(info.BaseDecimals),
		"quote_decimals": int(info.QuoteDecimals),
		"dex":            info.Dex,
	}
}

// PoolInfoFromHash 从 Redis 哈希解码；mint 与精度必填，其余可缺省
func PoolInfoFromHash(pool types.Pubkey, fields map[string]string) (cache.PoolInfo, error) {
	info := cache.PoolInfo{Pool: pool}
	keys := []struct {
		name     string
		dst      *types.Pubkey
		required bool
	}{
		{"base_mint", &info.BaseMint, true},
		{"quote_mint", &info.QuoteMint, true},
		{"lp_mint", &info.LpMint, false},
		{"base_vault", &info.BaseVault, false},
		{"quote_vault", &info.QuoteVault, false},
	}
	for _, k := range keys {
		v, ok := fields[k.name]
		if !ok || v == "" {
			if k.required {
				return info, fmt.Errorf("missing field %s", k.name)
			}
			continue
		}
		pk, err := types.TryPubkeyFromBase58(v)
		if err != nil {
			return info, fmt.Errorf("field %s: %w", k.name, err)
		}
		*k.dst = pk
	}

	decimals := []struct {
		name string
		dst  *uint8
	}{
		{"base_decimals", &info.BaseDecimals},
		{"quote_decimals", &info.QuoteDecimals},
	}
	for _, d := range decimals {
		v, err := strconv.ParseUint(fields[d.name], 10, 8)
		if err != nil {
			return info, fmt.Errorf("field %s: %w", d.name, err)
		}
		*d.dst = uint8(v)
	}
	if v, ok := fields["dex"]; ok && v != "" {
		dex, err := strconv.Atoi(v)
		if err != nil {
			return info, fmt.Errorf("field dex: %w", err)
		}
		info.Dex = dex
	}
	return info, nil
}
