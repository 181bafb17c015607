package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/tools"
	"dex-parser-sol/internal/types"
)

// PoolLegs 池子事件涉及的资金流，均可为 nil
type PoolLegs struct {
	Token0 *ParsedTransfer
	Token1 *ParsedTransfer
	Lp     *ParsedTransfer
}

// BuildPoolEvent 按动作对应的账户下标表构造 PoolEvent。
// pool 必须存在；mint 与 LP mint 优先取指令账户，其次取资金腿的 mint；用户缺省为交易签名者。
func BuildPoolEvent(
	ctx *ParserContext,
	ix *core.AdaptedInstruction,
	typ core.PoolEventType,
	layout *LiquidityLayout,
	legs PoolLegs,
	amm string,
) *core.PoolEvent {
	idx := layout.PoolAccountIndex
	event := &core.PoolEvent{
		Type:     typ,
		Accounts: idx,
		AMM:      amm,
	}
	if pk, ok := optionalAccount(ix, idx.Pool); ok {
		event.Pool = pk
	}
	if pk, ok := optionalAccount(ix, idx.LpMint); ok {
		event.LpMint = pk
	} else if legs.Lp != nil {
		event.LpMint = legs.Lp.Token
	}
	if pk, ok := optionalAccount(ix, idx.User); ok {
		event.User = pk
	} else {
		event.User = ctx.Signer()
	}
	if pk, ok := optionalAccount(ix, idx.Token0Mint); ok {
		event.Token0Mint = pk
	}
	if pk, ok := optionalAccount(ix, idx.Token1Mint); ok {
		event.Token1Mint = pk
	}
	if legs.Token0 != nil {
		amount := TokenAmountOf(legs.Token0)
		event.Token0 = &amount
		if event.Token0Mint.IsZero() {
			event.Token0Mint = amount.Mint
		}
	}
	if legs.Token1 != nil {
		amount := TokenAmountOf(legs.Token1)
		event.Token1 = &amount
		if event.Token1Mint.IsZero() {
			event.Token1Mint = amount.Mint
		}
	}
	if legs.Lp != nil {
		event.LpAmountRaw = tools.FormatRaw(legs.Lp.Amount)
	}
	return event
}

// AccountAt 安全读取指令账户
func AccountAt(ix *core.AdaptedInstruction, index int) (types.Pubkey, bool) {
	return optionalAccount(ix, index)
}

// LayoutOf 以全 -1 为底构造下标表，set 中只需填写涉及的字段
func LayoutOf(requireBoth bool, set func(idx *core.PoolAccountIndex)) LiquidityLayout {
	idx := core.NoAccountIndex()
	set(&idx)
	return LiquidityLayout{PoolAccountIndex: idx, RequireBothTransfer: requireBoth}
}

// ExtractAddLiquidity 匹配添加流动性（或建池注入）的资金腿并记录 PoolEvent，返回 next
func ExtractAddLiquidity(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	typ core.PoolEventType,
	layout *LiquidityLayout,
	amm, op string,
) int {
	ix := instrs[current]
	result := FindAddLiquidityTransfers(ctx, instrs, current, layout)
	if result == nil {
		logger.Warnf("[%s:%s] 转账结构缺失: idx=%s, tx=%s", amm, op, ix.Idx(), ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "%s %s: liquidity transfers not found", amm, op)
		return -1
	}
	legs := PoolLegs{Token0: result.Token0Transfer, Token1: result.Token1Transfer, Lp: result.LpMintTo}
	ctx.AddPool(ix, BuildPoolEvent(ctx, ix, typ, layout, legs, amm))
	return result.MaxIndex + 1
}

// ExtractRemoveLiquidity 匹配移除流动性的资金腿并记录 PoolEvent，返回 next
func ExtractRemoveLiquidity(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	layout *LiquidityLayout,
	amm, op string,
) int {
	ix := instrs[current]
	result := FindRemoveLiquidityTransfers(ctx, instrs, current, layout)
	if result == nil {
		logger.Warnf("[%s:%s] 转账结构缺失: idx=%s, tx=%s", amm, op, ix.Idx(), ctx.TxHashString())
		ctx.Warn(core.WarnMissingTransfer, ix, "%s %s: liquidity transfers not found", amm, op)
		return -1
	}
	legs := PoolLegs{Token0: result.Token0Transfer, Token1: result.Token1Transfer, Lp: result.LpBurn}
	ctx.AddPool(ix, BuildPoolEvent(ctx, ix, core.PoolRemove, layout, legs, amm))
	return result.MaxIndex + 1
}
