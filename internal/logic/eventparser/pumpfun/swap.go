package pumpfun

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

// Pump.fun buy / sell 指令账户结构：
//
//	#0  Global 配置账户
//	#1  手续费接收账户
//	#2  被交易代币的 Mint
//	#3  Bonding Curve 主账户（池子地址）
//	#4  Bonding Curve Vault（池子 TokenAccount）
//	#5  用户 Associated Token Account
//	#6  用户主账户
//	#7  System Program
//	#8  Token Program
//	#9  Creator Vault
//	#10 Event Authority
//	#11 Pump.fun 程序账户
const (
	swapFeeRecipientIndex = 1
	swapMintIndex         = 2
	swapPoolIndex         = 3
	swapPoolTokenIndex    = 4
	swapUserTokenIndex    = 5
	swapUserIndex         = 6
	swapCreatorVaultIndex = 9
	swapMinAccounts       = 7
)

// extractSwapEvent 解析 buy / sell，优先使用 TradeEvent，缺失时由转账腿还原买入
func extractSwapEvent(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	args SwapArgs,
) int {
	ix := instrs[current]
	if len(ix.Accounts) < swapMinAccounts {
		logger.Errorf("[Pumpfun:Swap] 指令账户长度不足: got=%d, expect>=%d, tx=%s",
			len(ix.Accounts), swapMinAccounts, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun swap: %d accounts", len(ix.Accounts))
		return -1
	}

	events := findEvents(ctx, instrs, current, "pumpfun TradeEvent")
	var trade *TradeEvent
	var complete *eventSource
	for i := range events {
		switch ev := events[i].Event.(type) {
		case TradeEvent:
			if trade == nil {
				trade = &ev
			}
		case CompleteEvent:
			complete = &events[i]
		}
	}

	if trade == nil {
		return extractSwapFromTransfers(ctx, instrs, current, args)
	}

	mint := ix.Accounts[swapMintIndex]
	if trade.Mint != mint {
		logger.Errorf("[Pumpfun:Swap] mint 不匹配 (expected=%s, got=%s): tx=%s", mint, trade.Mint, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun swap: event mint %s != %s", trade.Mint, mint)
		return consumed(current, events)
	}
	if trade.IsBuy != args.IsBuy {
		logger.Errorf("[Pumpfun:Swap] 事件方向不匹配 (expected %v, got %v): tx=%s", args.IsBuy, trade.IsBuy, ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "pumpfun swap: event direction mismatch")
		return consumed(current, events)
	}

	user := trade.User
	if user.IsZero() {
		user = ix.Accounts[swapUserIndex]
	}
	fee, fees := common.BuildFees(consts.WSOLMint, consts.SOLDecimals,
		common.FeeComponent{Kind: core.FeeProtocol, Amount: trade.Fee, Recipient: trade.FeeRecipient},
		common.FeeComponent{Kind: core.FeeCreator, Amount: trade.CreatorFee, Recipient: trade.Creator},
	)
	ctx.AddTrade(ix, buildTrade(ctx, ix, trade.IsBuy, trade.SolAmount, trade.TokenAmount, user, fee, fees))

	if complete != nil {
		ev := complete.Event.(CompleteEvent)
		addCompleteEvent(ctx, eventInstruction(instrs, ix, complete.Index), ev.BondingCurve, ev.Mint, ev.User)
	}
	return consumed(current, events)
}

// extractSwapFromTransfers 无事件时的兜底：买入有 SOL 与 token 两条转账腿；卖出的 SOL 由程序直接改写 lamports，无法还原
func extractSwapFromTransfers(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	args SwapArgs,
) int {
	ix := instrs[current]
	if !args.IsBuy {
		ctx.Warn(core.WarnMissingTransfer, ix, "pumpfun sell: no TradeEvent")
		return -1
	}

	pool := ix.Accounts[swapPoolIndex]
	poolToken := ix.Accounts[swapPoolTokenIndex]
	userToken := ix.Accounts[swapUserTokenIndex]
	user := ix.Accounts[swapUserIndex]
	feeRecipient, _ := common.AccountAt(ix, swapFeeRecipientIndex)
	creatorVault, _ := common.AccountAt(ix, swapCreatorVaultIndex)

	var solIn, tokenOut *common.ParsedTransfer
	var protocolFee, creatorFee uint64
	maxIndex := current
	for _, pt := range ctx.Transfers.Of(ix) {
		switch {
		case pt.Kind == common.KindSystemTransfer && pt.SrcAccount == user && pt.DestAccount == pool && solIn == nil:
			solIn = pt
		case pt.Kind == common.KindSystemTransfer && pt.SrcAccount == user && pt.DestAccount == feeRecipient:
			protocolFee += pt.Amount
		case pt.Kind == common.KindSystemTransfer && pt.SrcAccount == user && pt.DestAccount == creatorVault:
			creatorFee += pt.Amount
		case pt.Kind == common.KindTransfer && pt.SrcAccount == poolToken && pt.DestAccount == userToken && tokenOut == nil:
			tokenOut = pt
		default:
			continue
		}
		maxIndex = max(maxIndex, pt.Position)
	}
	if solIn == nil || tokenOut == nil {
		logger.Warnf("[Pumpfun:Swap] 未找到事件且转账腿不完整: tx=%s", ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "pumpfun buy: no TradeEvent and incomplete transfer legs")
		return -1
	}

	fee, fees := common.BuildFees(consts.WSOLMint, consts.SOLDecimals,
		common.FeeComponent{Kind: core.FeeProtocol, Amount: protocolFee, Recipient: feeRecipient},
		common.FeeComponent{Kind: core.FeeCreator, Amount: creatorFee, Recipient: creatorVault},
	)
	ctx.AddTrade(ix, buildTrade(ctx, ix, true, solIn.Amount, tokenOut.Amount, user, fee, fees))
	return maxIndex + 1
}

func buildTrade(
	ctx *common.ParserContext,
	ix *core.AdaptedInstruction,
	isBuy bool,
	solAmount, tokenAmount uint64,
	user types.Pubkey,
	fee *core.FeeInfo,
	fees []core.FeeInfo,
) *core.TradeInfo {
	mint := ix.Accounts[swapMintIndex]
	decimals, ok := ctx.DecimalsOf(ix.Accounts[swapUserTokenIndex], mint)
	if !ok {
		decimals = consts.PumpfunTokenDecimals
	}
	sol := core.NewTokenAmount(consts.WSOLMint, solAmount, consts.SOLDecimals)
	token := core.NewTokenAmount(mint, tokenAmount, decimals)

	params := common.TradeParams{
		Pool: ix.Accounts[swapPoolIndex],
		User: user,
		Fee:  fee,
		Fees: fees,
		AMM:  ammName,
	}
	if isBuy {
		params.Type, params.Input, params.Output = core.TradeBuy, sol, token
	} else {
		params.Type, params.Input, params.Output = core.TradeSell, token, sol
	}
	return common.BuildTrade(params)
}

// eventInstruction 事件来自日志时以主指令作为记录位置
func eventInstruction(instrs []*core.AdaptedInstruction, fallback *core.AdaptedInstruction, index int) *core.AdaptedInstruction {
	if index >= 0 && index < len(instrs) {
		return instrs[index]
	}
	return fallback
}
