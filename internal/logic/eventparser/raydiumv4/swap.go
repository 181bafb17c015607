package raydiumv4

import (
	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
)

// 来源：https://github.com/raydium-io/raydium-amm/blob/master/program/src/instruction.rs
// 示例交易：https://solscan.io/tx/48AjDjnqimjaxSPjB2ALDGgFwRvs7iotjnKRyZmiA2z4g7yGgkyxU4eJFdoJgGG3oo9k8M1928zXfedEz8nbMoJV
//
// Raydium V4 Swap 指令账户布局（18 个账户时多出 #4 target orders，其后下标整体 +1）：
//
//	#0  SPL Token Program
//	#1  AMM 主账户（池子地址）
//	#2  权限 PDA
//	#3  AMM open_orders
//	#4  池子 coin vault
//	#5  池子 pc vault
//	#6  市场程序 ID
//	#7  市场账户
//	#8  bids
//	#9  asks
//	#10 event queue
//	#11 市场 coin vault
//	#12 市场 pc vault
//	#13 市场 vault signer
//	#14 用户 source token 账户
//	#15 用户 destination token 账户
//	#16 用户钱包
const poolIndex = 1

// extractSwapEvent 转账腿完整时直接构造成交；否则以 ray_log 与池子元数据还原
func extractSwapEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	rayLog RayLog,
) int {
	ix := instrs[current]

	// Raydium V4 固定结构为 17 或 18 个账户
	accountCount := len(ix.Accounts)
	if accountCount != 17 && accountCount != 18 {
		logger.Infof("[RaydiumV4:Swap] 账户数量异常: got=%d, tx=%s", accountCount, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "raydiumv4 swap: %d accounts", accountCount)
		return -1
	}
	offset := accountCount - 17

	result := common.FindSwapTransfersByIndex(ctx, instrs, current, &common.SwapInstructionIndex{
		UserToken1AccountIndex: offset + 14,
		UserToken2AccountIndex: offset + 15,
		PoolToken1AccountIndex: offset + 4,
		PoolToken2AccountIndex: offset + 5,
	})
	if result != nil {
		ctx.AddTrade(ix, common.BuildTradeFromTransfers(ctx, result, ix.Accounts[poolIndex], ammName))
		return result.MaxIndex + 1
	}

	trade := tradeFromRayLog(ctx, ix, rayLog, offset)
	if trade == nil {
		return -1
	}
	ctx.AddTrade(ix, trade)
	return current + 1
}

// tradeFromRayLog 由 ray_log 的方向与金额还原成交，token 信息来自池子元数据缓存
func tradeFromRayLog(ctx *common.ParserContext, ix *core.AdaptedInstruction, rayLog RayLog, offset int) *core.TradeInfo {
	var direction, amountIn, amountOut uint64
	switch l := rayLog.(type) {
	case SwapBaseInLog:
		direction, amountIn, amountOut = l.Direction, l.AmountIn, l.OutAmount
	case SwapBaseOutLog:
		direction, amountIn, amountOut = l.Direction, l.DeductIn, l.AmountOut
	default:
		logger.Infof("[RaydiumV4:Swap] 转账结构缺失且无 swap ray_log: idx=%s, tx=%s", ix.Idx(), ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "raydiumv4 swap: transfers incomplete and no swap ray_log")
		return nil
	}

	pool := ix.Accounts[poolIndex]
	info, ok := ctx.LookupPool(pool)
	if !ok {
		logger.Infof("[RaydiumV4:Swap] 池子元数据缺失: pool=%s, tx=%s", pool, ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "raydiumv4 swap: pool %s metadata not cached", pool)
		return nil
	}

	var input, output core.TokenAmount
	switch direction {
	case DirectionPC2Coin:
		input = core.NewTokenAmount(info.QuoteMint, amountIn, info.QuoteDecimals)
		output = core.NewTokenAmount(info.BaseMint, amountOut, info.BaseDecimals)
	case DirectionCoin2PC:
		input = core.NewTokenAmount(info.BaseMint, amountIn, info.BaseDecimals)
		output = core.NewTokenAmount(info.QuoteMint, amountOut, info.QuoteDecimals)
	default:
		ctx.Warn(core.WarnInvalidEncoding, ix, "raydiumv4 ray_log: direction %d", direction)
		return nil
	}

	user, ok := common.AccountAt(ix, offset+16)
	if !ok || user.IsZero() {
		user = ctx.Signer()
	}
	return common.BuildTrade(common.TradeParams{
		Pool:   pool,
		User:   user,
		Input:  input,
		Output: output,
		AMM:    ammName,
	})
}

// PoolInfoFromInit 由 Initialize2 的账户与 InitLog 构造池子元数据，供后续 ray_log 兜底使用
func PoolInfoFromInit(ix *core.AdaptedInstruction, l InitLog) (cache.PoolInfo, bool) {
	if len(ix.Accounts) < initMinAccounts {
		return cache.PoolInfo{}, false
	}
	return cache.PoolInfo{
		Pool:          ix.Accounts[4],
		LpMint:        ix.Accounts[7],
		BaseMint:      ix.Accounts[8],
		QuoteMint:     ix.Accounts[9],
		BaseVault:     ix.Accounts[10],
		QuoteVault:    ix.Accounts[11],
		BaseDecimals:  l.CoinDecimals,
		QuoteDecimals: l.PcDecimals,
		Dex:           consts.DexRaydiumV4,
	}, true
}
