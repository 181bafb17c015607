package pumpfunamm

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

// Pump.fun AMM buy / sell 指令账户布局：
//
//	#0  Pool
//	#1  User
//	#2  Global Config
//	#3  Base Mint
//	#4  Quote Mint
//	#5  User Base Token Account
//	#6  User Quote Token Account
//	#7  Pool Base Token Account
//	#8  Pool Quote Token Account
//	#9  Protocol Fee Recipient
//	#10 Protocol Fee Recipient Token Account
//	...
//	#17 Coin Creator Vault ATA
//	#18 Coin Creator Vault Authority
var swapIndexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 5,
	UserToken2AccountIndex: 6,
	PoolToken1AccountIndex: 7,
	PoolToken2AccountIndex: 8,
}

const swapMinAccounts = 9

// extractSwapEvent 优先使用 BuyEvent / SellEvent 还原成交与手续费，事件缺失时由转账腿还原
func extractSwapEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	args SwapArgs,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < swapMinAccounts {
		logger.Errorf("[PumpfunAMM:Swap] 账户数量不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), swapMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfunamm swap: %d accounts", len(ix.Accounts))
		return -1
	}

	event, eventIndex := findSwapEvent(ctx, instrs, current)
	next := max(eventIndex, current) + 1

	var trade *core.TradeInfo
	switch ev := event.(type) {
	case BuyEvent:
		if !args.IsBuy {
			break
		}
		trade = buildTrade(ctx, ix, args, ev.User,
			quoteAmount(ctx, ix, ev.UserQuoteAmountIn), baseAmount(ctx, ix, ev.BaseAmountOut),
			ev.ProtocolFee, ev.ProtocolFeeRecipient, ev.CoinCreatorFee, ev.CoinCreator)
	case SellEvent:
		if args.IsBuy {
			break
		}
		trade = buildTrade(ctx, ix, args, ev.User,
			baseAmount(ctx, ix, ev.BaseAmountIn), quoteAmount(ctx, ix, ev.UserQuoteAmountOut),
			ev.ProtocolFee, ev.ProtocolFeeRecipient, ev.CoinCreatorFee, ev.CoinCreator)
	default:
		// 无事件或未知事件：按转账腿还原
		return common.ExtractSwap(ctx, instrs, current, &swapIndexes, 0, ammName, "Swap")
	}

	if trade == nil {
		logger.Errorf("[PumpfunAMM:Swap] 事件方向与指令不一致: isBuy=%v, tx=%s", args.IsBuy, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfunamm swap: event direction mismatch")
		return next
	}
	ctx.AddTrade(ix, trade)
	return next
}

// findSwapEvent 子树内的自调用事件优先，其次取本指令调用帧内的 "Program data:" 日志
func findSwapEvent(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int) (Event, int) {
	if idx := common.FindCPIEvent(instrs, current, consts.PumpFunAMMProgram); idx >= 0 {
		ev, err := DecodeEvent(common.CPIEventBody(instrs[idx]))
		if err != nil {
			ctx.WarnDecode(instrs[idx], "pumpfunamm swap event", err)
			return nil, idx
		}
		return ev, idx
	}
	if e, ok := ctx.FrameLogEvent(instrs[current], logscanner.KindData); ok {
		ev, err := DecodeEvent(e.Data)
		if err != nil {
			ctx.WarnDecode(instrs[current], "pumpfunamm swap event", err)
			return nil, -1
		}
		return ev, -1
	}
	return nil, -1
}

// sideAmount 取 mint 精度：先看用户账户，再看池子账户
func sideAmount(ctx *common.ParserContext, ix *core.AdaptedInstruction, mintIndex, userIndex, poolIndex int, raw uint64) core.TokenAmount {
	mint := ix.Accounts[mintIndex]
	decimals, ok := ctx.DecimalsOf(ix.Accounts[userIndex], mint)
	if !ok {
		decimals, _ = ctx.DecimalsOf(ix.Accounts[poolIndex], mint)
	}
	return core.NewTokenAmount(mint, raw, decimals)
}

func baseAmount(ctx *common.ParserContext, ix *core.AdaptedInstruction, raw uint64) core.TokenAmount {
	return sideAmount(ctx, ix, 3, 5, 7, raw)
}

func quoteAmount(ctx *common.ParserContext, ix *core.AdaptedInstruction, raw uint64) core.TokenAmount {
	return sideAmount(ctx, ix, 4, 6, 8, raw)
}

func buildTrade(
	ctx *common.ParserContext,
	ix *core.AdaptedInstruction,
	args SwapArgs,
	user types.Pubkey,
	input, output core.TokenAmount,
	protocolFee uint64, protocolRecipient types.Pubkey,
	creatorFee uint64, creator types.Pubkey,
) *core.TradeInfo {
	if user.IsZero() {
		user = ix.Accounts[1]
	}
	quote := ix.Accounts[4]
	quoteDecimals := input.Decimals
	if output.Mint == quote {
		quoteDecimals = output.Decimals
	}
	fee, fees := common.BuildFees(quote, quoteDecimals,
		common.FeeComponent{Kind: core.FeeProtocol, Amount: protocolFee, Recipient: protocolRecipient},
		common.FeeComponent{Kind: core.FeeCreator, Amount: creatorFee, Recipient: creator},
	)

	typ := common.ResolveTradeType(input.Mint, output.Mint)
	if typ == core.TradeSwap {
		// 双方都不是已知 quote 时以池子的 quote 侧判定
		typ = core.TradeSell
		if args.IsBuy {
			typ = core.TradeBuy
		}
	}
	return common.BuildTrade(common.TradeParams{
		Type:   typ,
		Pool:   ix.Accounts[0],
		User:   user,
		Input:  input,
		Output: output,
		Fee:    fee,
		Fees:   fees,
		AMM:    ammName,
	})
}
