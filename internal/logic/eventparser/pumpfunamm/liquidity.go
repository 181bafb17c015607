package pumpfunamm

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
)

// Pump.fun AMM create_pool / deposit / withdraw 共用前 11 个账户：
//
//	#0  Pool
//	#1  Global Config
//	#2  User（create_pool 为创建者）
//	#3  Base Mint
//	#4  Quote Mint
//	#5  LP Mint
//	#6  User Base Token Account
//	#7  User Quote Token Account
//	#8  User Pool Token Account（LP）
//	#9  Pool Base Token Account
//	#10 Pool Quote Token Account
var liquidityLayout = common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
	idx.Pool = 0
	idx.User = 2
	idx.Token0Mint = 3
	idx.Token1Mint = 4
	idx.LpMint = 5
	idx.UserToken0 = 6
	idx.UserToken1 = 7
	idx.UserLp = 8
	idx.PoolToken0 = 9
	idx.PoolToken1 = 10
})

const liquidityMinAccounts = 11

func checkLiquidityAccounts(ctx *common.ParserContext, ix *core.AdaptedInstruction, op string) bool {
	if len(ix.Accounts) >= liquidityMinAccounts {
		return true
	}
	logger.Errorf("[PumpfunAMM:%s] 账户数不足: got=%d, expect>=%d, tx=%s",
		op, len(ix.Accounts), liquidityMinAccounts, ctx.TxHashString())
	ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfunamm %s: %d accounts", op, len(ix.Accounts))
	return false
}

// 示例交易：https://solscan.io/tx/3sg7gJxwFShPWcTgadp2VxVwT542tBPorFbRFQSR7YU7UJrFc2PywxXGfH5ntHfApinxSLLUeixmJ2eTBjhvrBrN
func extractCreatePoolEvent(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int) int {
	if !checkLiquidityAccounts(ctx, instrs[current], "CreatePool") {
		return -1
	}
	return common.ExtractAddLiquidity(ctx, instrs, current, core.PoolCreate, &liquidityLayout, ammName, "CreatePool")
}

// 示例交易：https://solscan.io/tx/8M1ymW67CRt4zkCRLqh9e8jK8mhtUN9JtaYFqc1e8JKpGoBjsSeHTpuGupQfTcgCKKsF6vq65tEbaTCg2zS15RS
func extractAddLiquidityEvent(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int) int {
	if !checkLiquidityAccounts(ctx, instrs[current], "AddLiquidity") {
		return -1
	}
	return common.ExtractAddLiquidity(ctx, instrs, current, core.PoolAdd, &liquidityLayout, ammName, "AddLiquidity")
}

// 示例交易：https://solscan.io/tx/26g2MFnXChvgXVTfi4oZeUeAHySthexq1mHP62s64TJrZzAdzCzbe1d1scpUG51bPf36zeSL8JaMP28Pss7jwfFq
func extractRemoveLiquidityEvent(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int) int {
	if !checkLiquidityAccounts(ctx, instrs[current], "RemoveLiquidity") {
		return -1
	}
	return common.ExtractRemoveLiquidity(ctx, instrs, current, &liquidityLayout, ammName, "RemoveLiquidity")
}
