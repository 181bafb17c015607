package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/pkg/logger"
)

// SwapInstructionIndex 表示 Swap 操作中涉及的关键账户索引。
// 所有字段对应指令 accounts 列表中的位置。
type SwapInstructionIndex struct {
	UserToken1AccountIndex int // 用户提供的 token1 账户索引（可能为支付或接收）
	UserToken2AccountIndex int // 用户提供的 token2 账户索引（可能为支付或接收）
	PoolToken1AccountIndex int // 池子的 token1 账户索引
	PoolToken2AccountIndex int // 池子的 token2 账户索引
}

// SwapTransferResult 表示成功识别出的 Swap 中两个方向的转账记录。
type SwapTransferResult struct {
	UserToPool *ParsedTransfer // 用户支付 → 池子
	PoolToUser *ParsedTransfer // 池子支付 → 用户
	MaxIndex   int             // 涉及的最大指令位置（用于标记已消费范围）
}

// validateSwapInstructionIndex 校验 SwapInstructionIndex 各字段是否在账户范围内。
func validateSwapInstructionIndex(indexes *SwapInstructionIndex, accountsLen int) bool {
	isValid := func(index int) bool {
		return index >= 0 && index < accountsLen
	}
	return isValid(indexes.UserToken1AccountIndex) &&
		isValid(indexes.UserToken2AccountIndex) &&
		isValid(indexes.PoolToken1AccountIndex) &&
		isValid(indexes.PoolToken2AccountIndex)
}

// FindSwapTransfersByIndex 在 instrs[current] 直接发起的转账中匹配 Swap 的两条腿（用户支付 + 用户接收）。
// 若同时成功匹配两个方向且 mint 不同，返回 SwapTransferResult；否则返回 nil。
func FindSwapTransfersByIndex(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	indexes *SwapInstructionIndex,
) *SwapTransferResult {
	mainIx := instrs[current]
	if !validateSwapInstructionIndex(indexes, len(mainIx.Accounts)) {
		return nil
	}

	// 提取关键账户
	userToken1 := mainIx.Accounts[indexes.UserToken1AccountIndex]
	userToken2 := mainIx.Accounts[indexes.UserToken2AccountIndex]
	poolToken1 := mainIx.Accounts[indexes.PoolToken1AccountIndex]
	poolToken2 := mainIx.Accounts[indexes.PoolToken2AccountIndex]

	var userToPool, poolToUser *ParsedTransfer
	maxIndex := current

	for _, pt := range ctx.Transfers.Of(mainIx) {
		if pt.Kind != KindTransfer {
			continue
		}

		// 用户 → 池子（支付方向）
		if userToPool == nil &&
			(pt.SrcAccount == userToken1 || pt.SrcAccount == userToken2) &&
			(pt.DestAccount == poolToken1 || pt.DestAccount == poolToken2) {
			// 避免与 poolToUser 冲突（如地址重叠）
			if isTransferConflict(pt, poolToUser) {
				continue
			}
			userToPool = pt
			maxIndex = max(maxIndex, pt.Position)
			continue
		}

		// 池子 → 用户（接收方向）
		if poolToUser == nil &&
			(pt.SrcAccount == poolToken1 || pt.SrcAccount == poolToken2) &&
			(pt.DestAccount == userToken1 || pt.DestAccount == userToken2) {
			if isTransferConflict(pt, userToPool) {
				continue
			}
			poolToUser = pt
			maxIndex = max(maxIndex, pt.Position)
			continue
		}

		// 两个方向都已匹配到，提前结束
		if userToPool != nil && poolToUser != nil {
			break
		}
	}

	if userToPool == nil || poolToUser == nil {
		return nil
	}
	if userToPool.Token == poolToUser.Token {
		return nil
	}

	return &SwapTransferResult{
		UserToPool: userToPool,
		PoolToUser: poolToUser,
		MaxIndex:   maxIndex,
	}
}

func isTransferConflict(pt, other *ParsedTransfer) bool {
	if other == nil {
		return false
	}
	return pt.DestAccount == other.DestAccount || pt.SrcAccount == other.SrcAccount
}

// ExtractSwap 由转账腿构造成交：poolIndex 为池子账户下标。成功返回 next，未匹配到两条腿时记录告警并返回 -1
func ExtractSwap(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	indexes *SwapInstructionIndex,
	poolIndex int,
	amm, op string,
) int {
	return extractSwap(ctx, instrs, current, indexes, poolIndex, [2]int{-1, -1}, amm, op)
}

func extractSwap(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	indexes *SwapInstructionIndex,
	poolIndex int,
	mints [2]int,
	amm, op string,
) int {
	ix := instrs[current]
	pool, ok := AccountAt(ix, poolIndex)
	if !ok || !validateSwapInstructionIndex(indexes, len(ix.Accounts)) {
		logger.Errorf("[%s:%s] 账户数量不足: got=%d, tx=%s", amm, op, len(ix.Accounts), ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "%s %s: %d accounts", amm, op, len(ix.Accounts))
		return -1
	}
	result := FindSwapTransfersByIndex(ctx, instrs, current, indexes)
	if result == nil {
		logger.Infof("[%s:%s] 转账结构缺失: idx=%s, tx=%s", amm, op, ix.Idx(), ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "%s %s: swap transfers not found", amm, op)
		return -1
	}
	if !swapMintsMatch(result, ix, mints) {
		logger.Errorf("[%s:%s] mint 不匹配: userToPool=%s, poolToUser=%s, tx=%s",
			amm, op, result.UserToPool.Token, result.PoolToUser.Token, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "%s %s: transfer mints do not match pool mints", amm, op)
		return -1
	}
	ctx.AddTrade(ix, BuildTradeFromTransfers(ctx, result, pool, amm))
	return result.MaxIndex + 1
}
