package service

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"time"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ammV4Account(base, quote, lp, baseVault, quoteVault types.Pubkey, baseDec, quoteDec uint64) []byte {
	data := make([]byte, ammV4StateSize)
	binary.LittleEndian.PutUint64(data[ammV4BaseDecimals:], baseDec)
	binary.LittleEndian.PutUint64(data[ammV4QuoteDecimals:], quoteDec)
	copy(data[ammV4BaseVault:], baseVault[:])
	copy(data[ammV4QuoteVault:], quoteVault[:])
	copy(data[ammV4BaseMint:], base[:])
	copy(data[ammV4QuoteMint:], quote[:])
	copy(data[ammV4LpMint:], lp[:])
	return data
}

func TestDecodeAmmV4Pool(t *testing.T) {
	pool := testkit.Key(1)
	data := ammV4Account(testkit.Key(2), consts.WSOLMint, testkit.Key(3), testkit.Key(4), testkit.Key(5), 6, 9)

	info, err := DecodeAmmV4Pool(pool, data)
	require.NoError(t, err)
	assert.Equal(t, pool, info.Pool)
	assert.Equal(t, testkit.Key(2), info.BaseMint)
	assert.Equal(t, consts.WSOLMint, info.QuoteMint)
	assert.Equal(t, testkit.Key(3), info.LpMint)
	assert.Equal(t, testkit.Key(4), info.BaseVault)
	assert.Equal(t, testkit.Key(5), info.QuoteVault)
	assert.Equal(t, uint8(6), info.BaseDecimals)
	assert.Equal(t, uint8(9), info.QuoteDecimals)
	assert.Equal(t, consts.DexRaydiumV4, info.Dex)
}

func TestDecodeAmmV4PoolRejects(t *testing.T) {
	_, err := DecodeAmmV4Pool(testkit.Key(1), make([]byte, 100))
	assert.ErrorIs(t, err, ErrNotAmmV4Pool)

	_, err = DecodeAmmV4Pool(testkit.Key(1), make([]byte, ammV4StateSize))
	assert.ErrorIs(t, err, ErrNotAmmV4Pool, "零 mint")

	data := ammV4Account(testkit.Key(2), testkit.Key(3), testkit.Key(4), testkit.Key(5), testkit.Key(6), 300, 9)
	_, err = DecodeAmmV4Pool(testkit.Key(1), data)
	assert.ErrorIs(t, err, ErrNotAmmV4Pool, "精度越界")
}

func TestPoolInfoHash(t *testing.T) {
	info := cache.PoolInfo{
		Pool:          testkit.Key(1),
		BaseMint:      testkit.Key(2),
		QuoteMint:     testkit.Key(3),
		LpMint:        testkit.Key(4),
		BaseVault:     testkit.Key(5),
		QuoteVault:    testkit.Key(6),
		BaseDecimals:  6,
		QuoteDecimals: 9,
		Dex:           consts.DexRaydiumV4,
	}
	// Redis 读回的值均为字符串
	fields := map[string]string{
		"base_mint":      info.BaseMint.String(),
		"quote_mint":     info.QuoteMint.String(),
		"lp_mint":        info.LpMint.String(),
		"base_vault":     info.BaseVault.String(),
		"quote_vault":    info.QuoteVault.String(),
		"base_decimals":  "6",
		"quote_decimals": "9",
		"dex":            "1",
	}
	hash := PoolInfoToHash(info)
	assert.Len(t, hash, len(fields))
	assert.Equal(t, fields["base_mint"], hash["base_mint"])

	got, err := PoolInfoFromHash(info.Pool, fields)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	delete(fields, "quote_mint")
	_, err = PoolInfoFromHash(info.Pool, fields)
	assert.Error(t, err)
}

type fakeFetcher struct {
	infos []cache.PoolInfo
	err   error
	calls [][]types.Pubkey
}

func (f *fakeFetcher) Fetch(_ context.Context, pools []types.Pubkey) ([]cache.PoolInfo, error) {
	f.calls = append(f.calls, pools)
	return f.infos, f.err
}

func TestFillWithoutRedis(t *testing.T) {
	pools := cache.NewPoolCache(8)
	cached := cache.PoolInfo{Pool: testkit.Key(1), BaseMint: testkit.Key(2), QuoteMint: testkit.Key(3)}
	pools.Set(cached)

	fetched := cache.PoolInfo{Pool: testkit.Key(4), BaseMint: testkit.Key(5), QuoteMint: testkit.Key(6)}
	f := &fakeFetcher{infos: []cache.PoolInfo{fetched}}
	svc := NewPoolMetaService(nil, f, pools, 0)

	n, err := svc.Fill(context.Background(), []types.Pubkey{testkit.Key(1), testkit.Key(4), testkit.Key(4)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.calls, 1)
	assert.Equal(t, []types.Pubkey{testkit.Key(4)}, f.calls[0], "已缓存与重复的池子不再拉取")

	got, ok := pools.Get(testkit.Key(4))
	require.True(t, ok)
	assert.Equal(t, fetched, got)

	n, err = svc.Fill(context.Background(), []types.Pubkey{testkit.Key(4)})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.calls, 1)
}

func TestFillFetcherError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("rpc down")}
	svc := NewPoolMetaService(nil, f, cache.NewPoolCache(8), 0)
	n, err := svc.Fill(context.Background(), []types.Pubkey{testkit.Key(9)})
	assert.Error(t, err)
	assert.Zero(t, n)
}

// 需要真实 Redis：REDIS_ADDR=127.0.0.1:6379
func TestFillFromRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()

	stored := cache.PoolInfo{Pool: testkit.Key(201), BaseMint: testkit.Key(202), QuoteMint: consts.WSOLMint, BaseDecimals: 6, QuoteDecimals: 9, Dex: 1}
	fetched := cache.PoolInfo{Pool: testkit.Key(203), BaseMint: testkit.Key(204), QuoteMint: consts.USDCMint, BaseDecimals: 9, QuoteDecimals: 6, Dex: 1}
	require.NoError(t, rdb.HSet(ctx, PoolMetaKey(stored.Pool), PoolInfoToHash(stored)).Err())
	defer rdb.Del(ctx, PoolMetaKey(stored.Pool), PoolMetaKey(fetched.Pool))

	f := &fakeFetcher{infos: []cache.PoolInfo{fetched}}
	pools := cache.NewPoolCache(8)
	svc := NewPoolMetaService(rdb, f, pools, time.Minute)

	n, err := svc.Fill(ctx, []types.Pubkey{stored.Pool, fetched.Pool})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, f.calls, 1)
	assert.Equal(t, []types.Pubkey{fetched.Pool}, f.calls[0])

	got, ok := pools.Get(stored.Pool)
	require.True(t, ok)
	assert.Equal(t, stored, got)

	back, err := rdb.HGetAll(ctx, PoolMetaKey(fetched.Pool)).Result()
	require.NoError(t, err)
	decoded, err := PoolInfoFromHash(fetched.Pool, back)
	require.NoError(t, err)
	assert.Equal(t, fetched, decoded)
}
