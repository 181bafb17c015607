package pumpfun

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
)

// Pump.fun migrate 指令账户布局：
//
//	#0  Global Config
//	#1  Withdraw Authority
//	#2  Base Token Mint
//	#3  Bonding Curve
//	#4  Bonding Curve Vault
//	#5  User
//	#6  System Program
//	#7  Token Program
//	#8  Pump AMM Program
//	#9  AMM Pool
//	#10 Pool Authority
//	#11 Pool Authority Base Token Account
//	#12 Pool Authority Quote Token Account
//	#13 AMM Global Config
//	#14 Quote Token Mint
//	#15 LP Mint
var migrateLayout = common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
	idx.Token0Mint = 2
	idx.Pool = 3
	idx.PoolToken0 = 4
	idx.User = 5
	idx.Token1Mint = 14
	idx.LpMint = 15
})

const migrateMinAccounts = 6

// extractMigrateEvent 迁移到 Pump AMM 视为联合曲线完成。
// 不消费子指令：内部的 AMM create_pool 由 pumpfunamm 解析为建池事件。
func extractMigrateEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < migrateMinAccounts {
		logger.Errorf("[Pumpfun:Migrate] 指令账户长度不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), migrateMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun migrate: %d accounts", len(ix.Accounts))
		return -1
	}

	event := common.BuildPoolEvent(ctx, ix, core.PoolComplete, &migrateLayout, common.PoolLegs{}, ammName)
	if event.Token1Mint.IsZero() {
		event.Token1Mint = consts.WSOLMint
	}
	ctx.AddPool(ix, event)
	return -1
}
