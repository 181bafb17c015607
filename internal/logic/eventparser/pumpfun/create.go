package pumpfun

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

// Pump.fun create 指令账户布局：
//
//	#0  新创建的 Token Mint
//	#1  Mint Authority
//	#2  Bonding Curve 主账户（池子地址）
//	#3  Bonding Curve Vault（池子 TokenAccount）
//	#4  Global 配置账户
//	#5  Metaplex Token Metadata 程序
//	#6  Metadata 账户
//	#7  用户钱包
//	#8  System Program
//	#9  Token Program
//	#10 Associated Token Program
//	#11 Rent
//	#12 Event Authority
//	#13 Pump.fun 程序
var createLayout = common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
	idx.Token0Mint = 0
	idx.Pool = 2
	idx.PoolToken0 = 3
	idx.User = 7
})

const createMinAccounts = 8

// extractCreateEvent 新币创建即联合曲线建池，quote 固定为 SOL
func extractCreateEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	_ CreateArgs,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < createMinAccounts {
		logger.Errorf("[Pumpfun:Create] 指令账户长度不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), createMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun create: %d accounts", len(ix.Accounts))
		return -1
	}

	events := findEvents(ctx, instrs, current, "pumpfun CreateEvent")
	for _, e := range events {
		ev, ok := e.Event.(CreateEvent)
		if !ok {
			continue
		}
		if ev.Mint != ix.Accounts[0] || ev.BondingCurve != ix.Accounts[2] {
			logger.Errorf("[Pumpfun:Create] 事件与指令账户不一致: mint=%s, curve=%s, tx=%s",
				ev.Mint, ev.BondingCurve, ctx.TxHashString())
			ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun create: event accounts mismatch")
			return consumed(current, events)
		}
		break
	}

	event := common.BuildPoolEvent(ctx, ix, core.PoolCreate, &createLayout, common.PoolLegs{}, ammName)
	event.Token1Mint = consts.WSOLMint
	ctx.AddPool(ix, event)
	return consumed(current, events)
}

// addCompleteEvent 联合曲线完成：由买入后的 CompleteEvent 或 migrate 指令触发
func addCompleteEvent(ctx *common.ParserContext, ix *core.AdaptedInstruction, curve, mint, user types.Pubkey) {
	if user.IsZero() {
		user = ctx.Signer()
	}
	ctx.AddPool(ix, &core.PoolEvent{
		Type:       core.PoolComplete,
		Pool:       curve,
		User:       user,
		Token0Mint: mint,
		Token1Mint: consts.WSOLMint,
		Accounts:   core.NoAccountIndex(),
		AMM:        ammName,
	})
}
