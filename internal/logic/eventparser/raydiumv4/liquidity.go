package raydiumv4

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
)

// Raydium V4 deposit 指令账户布局：
//
//	#0  Token Program
//	#1  Amm（池子地址）
//	#2  Amm Authority
//	#3  Amm Open Orders
//	#4  Amm Target Orders
//	#5  LP Mint
//	#6  Pool Coin Token Account
//	#7  Pool Pc Token Account
//	#8  Serum Market
//	#9  User Coin Token Account
//	#10 User Pc Token Account
//	#11 User LP Token Account
//	#12 User Owner
//	#13 Serum Event Queue
//
// 示例交易：https://solscan.io/tx/3XzeH4Csvw4x8QSe89yYpZ3Q9d3uaZ73PmXm7ony5yh1FXRTyWr9esvfgpBJG4DBZ7UkMt7K2LZ1JebtYiS2ZEyN
var depositLayout = common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
	idx.Pool = 1
	idx.LpMint = 5
	idx.PoolToken0 = 6
	idx.PoolToken1 = 7
	idx.UserToken0 = 9
	idx.UserToken1 = 10
	idx.UserLp = 11
	idx.User = 12
})

const depositMinAccounts = 13

func extractAddLiquidityEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < depositMinAccounts {
		logger.Errorf("[RaydiumV4:AddLiquidity] 账户数不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), depositMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "raydiumv4 deposit: %d accounts", len(ix.Accounts))
		return -1
	}
	return common.ExtractAddLiquidity(ctx, instrs, current, core.PoolAdd, &depositLayout, ammName, "AddLiquidity")
}

// Raydium V4 withdraw 指令账户布局（22 个账户的版本在 #8 前多出 withdraw queue 与 temp LP，用户侧下标 +2）：
//
//	#0  Token Program
//	#1  Amm
//	#2  Amm Authority
//	#3  Amm Open Orders
//	#4  Amm Target Orders
//	#5  LP Mint
//	#6  Pool Coin Token Account
//	#7  Pool Pc Token Account
//	...
//	#13 User LP Token Account
//	#14 User Coin Token Account
//	#15 User Pc Token Account
//	#16 User Owner
//
// 示例交易：https://solscan.io/tx/3mcgoS1fCFXfcVUDy1V4Q5SDB9egQYdmywXFEQ4qSxoJ8EbbSjYbb7rFnGjJgfwchea5cNQydJSTMmQdJuWQvFpE
func withdrawLayout(accountCount int) common.LiquidityLayout {
	offset := 0
	if accountCount >= 22 {
		offset = 2
	}
	return common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
		idx.Pool = 1
		idx.LpMint = 5
		idx.PoolToken0 = 6
		idx.PoolToken1 = 7
		idx.UserLp = offset + 13
		idx.UserToken0 = offset + 14
		idx.UserToken1 = offset + 15
		idx.User = offset + 16
	})
}

const withdrawMinAccounts = 17

func extractRemoveLiquidityEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < withdrawMinAccounts {
		logger.Errorf("[RaydiumV4:RemoveLiquidity] 指令账户长度不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), withdrawMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "raydiumv4 withdraw: %d accounts", len(ix.Accounts))
		return -1
	}
	layout := withdrawLayout(len(ix.Accounts))
	return common.ExtractRemoveLiquidity(ctx, instrs, current, &layout, ammName, "RemoveLiquidity")
}

// Raydium V4 initialize2 指令账户布局：
//
//	#4  Amm（池子地址）
//	#7  LP Mint
//	#8  Coin Mint
//	#9  Pc Mint
//	#10 Pool Coin Token Account
//	#11 Pool Pc Token Account
//	#17 User Wallet
//	#18 User Coin Token Account
//	#19 User Pc Token Account
//	#20 User LP Token Account
var initLayout = common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
	idx.Pool = 4
	idx.LpMint = 7
	idx.Token0Mint = 8
	idx.Token1Mint = 9
	idx.PoolToken0 = 10
	idx.PoolToken1 = 11
	idx.User = 17
	idx.UserToken0 = 18
	idx.UserToken1 = 19
	idx.UserLp = 20
})

const initMinAccounts = 21

func extractInitializeEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	rayLog RayLog,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < initMinAccounts {
		logger.Errorf("[RaydiumV4:Initialize] 账户数不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), initMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "raydiumv4 initialize2: %d accounts", len(ix.Accounts))
		return -1
	}

	// 新池子的元数据写入缓存，同批后续交易的 ray_log 兜底可直接命中
	if l, ok := rayLog.(InitLog); ok && ctx.Pools != nil {
		if info, ok := PoolInfoFromInit(ix, l); ok {
			ctx.Pools.Set(info)
		}
	}
	return common.ExtractAddLiquidity(ctx, instrs, current, core.PoolCreate, &initLayout, ammName, "Initialize")
}
