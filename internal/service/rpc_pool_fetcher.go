package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
)

// Raydium AMM v4 池子账户（LIQUIDITY_STATE_LAYOUT_V4，752 字节）中用到的字段偏移
const (
	ammV4StateSize     = 752
	ammV4BaseDecimals  = 32
	ammV4QuoteDecimals = 40
	ammV4BaseVault     = 336
	ammV4QuoteVault    = 368
	ammV4BaseMint      = 400
	ammV4QuoteMint     = 432
	ammV4LpMint        = 464
)

// getMultipleAccounts 单次请求的账户上限
const rpcBatchLimit = 100

var ErrNotAmmV4Pool = errors.New("account is not a raydium amm v4 pool")

// RpcPoolFetcher 通过 RPC 读取池子账户并解码元数据
type RpcPoolFetcher struct {
	client  *client.Client
	timeout time.Duration
}

func NewRpcPoolFetcher(endpoint string, timeout time.Duration) *RpcPoolFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RpcPoolFetcher{client: client.NewClient(endpoint), timeout: timeout}
}

// Fetch 批量拉取池子账户；不存在或无法解码的账户被跳过并记录日志
func (f *RpcPoolFetcher) Fetch(ctx context.Context, pools []types.Pubkey) ([]cache.PoolInfo, error) {
	out := make([]cache.PoolInfo, 0, len(pools))
	for start := 0; start < len(pools); start += rpcBatchLimit {
		end := min(start+rpcBatchLimit, len(pools))
		batch := pools[start:end]

		addrs := make([]string, len(batch))
		for i, p := range batch {
			addrs[i] = p.String()
		}

		reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
		begin := time.Now()
		infos, err := f.client.GetMultipleAccounts(reqCtx, addrs)
		cancel()
		if err != nil {
			return out, fmt.Errorf("GetMultipleAccounts failed: %w", err)
		}
		logger.Infof("[RpcPoolFetcher] GetMultipleAccounts 成功, 账户数: %d, 耗时: %v", len(addrs), time.Since(begin))
		if len(infos) != len(batch) {
			return out, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(infos), len(batch))
		}

		for i, acc := range infos {
			if len(acc.Data) == 0 {
				logger.Warnf("[RpcPoolFetcher] 账户不存在或数据为空: pool=%s", batch[i])
				continue
			}
			if acc.Owner.ToBase58() != consts.RaydiumV4ProgramStr {
				logger.Warnf("[RpcPoolFetcher] 不支持的池子 owner: pool=%s owner=%s", batch[i], acc.Owner.ToBase58())
				continue
			}
			info, err := DecodeAmmV4Pool(batch[i], acc.Data)
			if err != nil {
				logger.Warnf("[RpcPoolFetcher] 解码失败: pool=%s err=%v", batch[i], err)
				continue
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// DecodeAmmV4Pool 从 AMM v4 池子账户数据中读取 mint、vault 与精度
func DecodeAmmV4Pool(pool types.Pubkey, data []byte) (cache.PoolInfo, error) {
	if len(data) != ammV4StateSize {
		return cache.PoolInfo{}, fmt.Errorf("%w: size %d", ErrNotAmmV4Pool, len(data))
	}
	info := cache.PoolInfo{Pool: pool, Dex: consts.DexRaydiumV4}

	u64 := func(offset int) uint64 {
		v, _, _ := layout.U64(data, offset)
		return v
	}
	key := func(offset int) types.Pubkey {
		v, _, _ := layout.Pubkey(data, offset)
		return v
	}

	baseDecimals, quoteDecimals := u64(ammV4BaseDecimals), u64(ammV4QuoteDecimals)
	if baseDecimals > 255 || quoteDecimals > 255 {
		return cache.PoolInfo{}, fmt.Errorf("%w: decimals %d/%d", ErrNotAmmV4Pool, baseDecimals, quoteDecimals)
	}
	info.BaseDecimals = uint8(baseDecimals)
	info.QuoteDecimals = uint8(quoteDecimals)
	info.BaseVault = key(ammV4BaseVault)
	info.QuoteVault = key(ammV4QuoteVault)
	info.BaseMint = key(ammV4BaseMint)
	info.QuoteMint = key(ammV4QuoteMint)
	info.LpMint = key(ammV4LpMint)
	if info.BaseMint.IsZero() || info.QuoteMint.IsZero() {
		return cache.PoolInfo{}, fmt.Errorf("%w: zero mint", ErrNotAmmV4Pool)
	}
	return info, nil
}
