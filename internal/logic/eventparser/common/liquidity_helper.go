package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/types"
)

// LiquidityLayout 单一动作（Create / Add / Remove）的账户下标表。
// 必选：Pool、PoolToken0/1、UserToken0/1；其余为 -1 表示忽略。
type LiquidityLayout struct {
	core.PoolAccountIndex
	RequireBothTransfer bool // 两条 token 腿都必须出现
}

// AddLiquidityResult 添加流动性（或建池注入）的资金流
type AddLiquidityResult struct {
	Token0Transfer *ParsedTransfer // 用户 → 池子 token0
	Token1Transfer *ParsedTransfer // 用户 → 池子 token1
	LpMintTo       *ParsedTransfer // 铸造给用户的 LP
	MaxIndex       int             // 涉及的最大指令位置
}

// RemoveLiquidityResult 移除流动性的资金流
type RemoveLiquidityResult struct {
	Token0Transfer *ParsedTransfer // 池子 → 用户 token0
	Token1Transfer *ParsedTransfer // 池子 → 用户 token1
	LpBurn         *ParsedTransfer // 用户销毁的 LP
	MaxIndex       int
}

// validateLiquidityLayout 校验下标：必选字段必须在 accounts 范围内，可选字段允许 -1。
func validateLiquidityLayout(layout *LiquidityLayout, accountsLen int) bool {
	isValid := func(index int) bool {
		return index >= 0 && index < accountsLen
	}
	isOptional := func(index int) bool {
		return index == -1 || isValid(index)
	}
	idx := layout.PoolAccountIndex
	return isValid(idx.Pool) &&
		isValid(idx.UserToken0) &&
		isValid(idx.UserToken1) &&
		isValid(idx.PoolToken0) &&
		isValid(idx.PoolToken1) &&
		isOptional(idx.UserLp) &&
		isOptional(idx.LpMint) &&
		isOptional(idx.Token0Mint) &&
		isOptional(idx.Token1Mint) &&
		isOptional(idx.User)
}

func optionalAccount(ix *core.AdaptedInstruction, index int) (types.Pubkey, bool) {
	if index < 0 || index >= len(ix.Accounts) {
		return types.Pubkey{}, false
	}
	return ix.Accounts[index], true
}

func isLpLeg(pt *ParsedTransfer, lpMint types.Pubkey, hasLpMint bool, lpAccount types.Pubkey, hasLpAccount bool, account types.Pubkey) bool {
	return (hasLpMint && pt.Token == lpMint) || (hasLpAccount && account == lpAccount)
}

// FindAddLiquidityTransfers 在 instrs[current] 直接发起的转账中匹配：
// 用户 → 池子的两条 token 腿（按目标 vault 区分 token0 / token1）与铸造给用户的 LP。
func FindAddLiquidityTransfers(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	layout *LiquidityLayout,
) *AddLiquidityResult {
	mainIx := instrs[current]
	if !validateLiquidityLayout(layout, len(mainIx.Accounts)) {
		return nil
	}

	idx := layout.PoolAccountIndex
	userToken0 := mainIx.Accounts[idx.UserToken0]
	userToken1 := mainIx.Accounts[idx.UserToken1]
	poolToken0 := mainIx.Accounts[idx.PoolToken0]
	poolToken1 := mainIx.Accounts[idx.PoolToken1]
	lpMint, hasLpMint := optionalAccount(mainIx, idx.LpMint)
	userLp, hasUserLp := optionalAccount(mainIx, idx.UserLp)

	result := &AddLiquidityResult{MaxIndex: current}
	for _, pt := range ctx.Transfers.Of(mainIx) {
		switch pt.Kind {
		case KindTransfer, KindSystemTransfer:
			if pt.SrcAccount != userToken0 && pt.SrcAccount != userToken1 {
				continue
			}
			if result.Token0Transfer == nil && pt.DestAccount == poolToken0 {
				result.Token0Transfer = pt
			} else if result.Token1Transfer == nil && pt.DestAccount == poolToken1 {
				result.Token1Transfer = pt
			} else {
				continue
			}
		case KindMintTo:
			if result.LpMintTo != nil || !isLpLeg(pt, lpMint, hasLpMint, userLp, hasUserLp, pt.DestAccount) {
				continue
			}
			result.LpMintTo = pt
		default:
			continue
		}
		result.MaxIndex = max(result.MaxIndex, pt.Position)
	}

	if !liquidityLegsOK(layout, result.Token0Transfer, result.Token1Transfer) {
		return nil
	}
	return result
}

// FindRemoveLiquidityTransfers 匹配池子 → 用户的两条 token 腿与用户销毁的 LP。
func FindRemoveLiquidityTransfers(
	ctx *ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
	layout *LiquidityLayout,
) *RemoveLiquidityResult {
	mainIx := instrs[current]
	if !validateLiquidityLayout(layout, len(mainIx.Accounts)) {
		return nil
	}

	idx := layout.PoolAccountIndex
	userToken0 := mainIx.Accounts[idx.UserToken0]
	userToken1 := mainIx.Accounts[idx.UserToken1]
	poolToken0 := mainIx.Accounts[idx.PoolToken0]
	poolToken1 := mainIx.Accounts[idx.PoolToken1]
	lpMint, hasLpMint := optionalAccount(mainIx, idx.LpMint)
	userLp, hasUserLp := optionalAccount(mainIx, idx.UserLp)

	result := &RemoveLiquidityResult{MaxIndex: current}
	for _, pt := range ctx.Transfers.Of(mainIx) {
		switch pt.Kind {
		case KindTransfer:
			if pt.DestAccount != userToken0 && pt.DestAccount != userToken1 {
				continue
			}
			if result.Token0Transfer == nil && pt.SrcAccount == poolToken0 {
				result.Token0Transfer = pt
			} else if result.Token1Transfer == nil && pt.SrcAccount == poolToken1 {
				result.Token1Transfer = pt
			} else {
				continue
			}
		case KindBurn:
			if result.LpBurn != nil || !isLpLeg(pt, lpMint, hasLpMint, userLp, hasUserLp, pt.SrcAccount) {
				continue
			}
			result.LpBurn = pt
		default:
			continue
		}
		result.MaxIndex = max(result.MaxIndex, pt.Position)
	}

	if !liquidityLegsOK(layout, result.Token0Transfer, result.Token1Transfer) {
		return nil
	}
	return result
}

func liquidityLegsOK(layout *LiquidityLayout, t0, t1 *ParsedTransfer) bool {
	if layout.RequireBothTransfer {
		return t0 != nil && t1 != nil
	}
	return t0 != nil || t1 != nil
}
