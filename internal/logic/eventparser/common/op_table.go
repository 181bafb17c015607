package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/logger"
)

// OpKind 无需解码参数、只靠账户与转账腿即可还原的指令类别
type OpKind uint8

const (
	OpSwap         OpKind = iota + 1
	OpCreate              // 只建池，没有资金注入
	OpCreateFunded        // 建池同时注入流动性
	OpAdd
	OpRemove
)

// Op 一条指令的解析方式。Swap 类使用 Swap/PoolIndex/Mints，其余使用 Layout
type Op struct {
	Kind      OpKind
	Name      string
	Swap      SwapInstructionIndex
	PoolIndex int
	Mints     [2]int // swap 指令上两个 mint 的下标，[0] 为 -1 时不校验
	Layout    LiquidityLayout
}

// SwapOp 构造 swap 表项；mints 为空时不校验转账腿的 mint
func SwapOp(name string, poolIndex int, indexes SwapInstructionIndex, mints ...int) Op {
	op := Op{Kind: OpSwap, Name: name, Swap: indexes, PoolIndex: poolIndex, Mints: [2]int{-1, -1}}
	if len(mints) == 2 {
		op.Mints = [2]int{mints[0], mints[1]}
	}
	return op
}

// PoolOp 构造池子动作表项
func PoolOp(kind OpKind, name string, layout LiquidityLayout) Op {
	return Op{Kind: kind, Name: name, Layout: layout}
}

// OpEntry 以 "global:<name>" 签名登记一条表项
func OpEntry(name string, op Op) discriminator.Entry[Op] {
	return discriminator.Signature[Op]("global:"+name, func([]byte) (Op, error) {
		return op, nil
	})
}

// NewOpHandler 由表驱动的 registry 生成 handler：未知前缀记入 Unknown，其余按 Op 类别提取
func NewOpHandler(registry *discriminator.Registry[Op], amm string) InstructionHandler {
	return func(ctx *ParserContext, instrs []*core.AdaptedInstruction, current int) int {
		ix := instrs[current]
		if IsCPIEvent(ix.Data) {
			return -1
		}
		m, err := registry.Dispatch(ix.Data)
		if err != nil {
			ctx.WarnDecode(ix, amm+" instruction", err)
			return -1
		}
		if !m.Known {
			ctx.Unknown(ix)
			return -1
		}
		return RunOp(ctx, instrs, current, m.Value, amm)
	}
}

// RunOp 执行一条表项，返回 next
func RunOp(ctx *ParserContext, instrs []*core.AdaptedInstruction, current int, op Op, amm string) int {
	ix := instrs[current]
	if op.Kind == OpSwap {
		return extractSwap(ctx, instrs, current, &op.Swap, op.PoolIndex, op.Mints, amm, op.Name)
	}

	valid := validateLiquidityLayout
	if op.Kind == OpCreate {
		valid = validateCreateLayout
	}
	if !valid(&op.Layout, len(ix.Accounts)) {
		logger.Errorf("[%s:%s] 账户数不足: got=%d, tx=%s", amm, op.Name, len(ix.Accounts), ctx.TxHashString())
		ctx.Warn(core.WarnInvalidEncoding, ix, "%s %s: %d accounts", amm, op.Name, len(ix.Accounts))
		return -1
	}
	switch op.Kind {
	case OpCreate:
		ctx.AddPool(ix, BuildPoolEvent(ctx, ix, core.PoolCreate, &op.Layout, PoolLegs{}, amm))
		return current + 1
	case OpCreateFunded:
		return ExtractAddLiquidity(ctx, instrs, current, core.PoolCreate, &op.Layout, amm, op.Name)
	case OpAdd:
		return ExtractAddLiquidity(ctx, instrs, current, core.PoolAdd, &op.Layout, amm, op.Name)
	case OpRemove:
		return ExtractRemoveLiquidity(ctx, instrs, current, &op.Layout, amm, op.Name)
	default:
		return -1
	}
}

func swapMintsMatch(result *SwapTransferResult, ix *core.AdaptedInstruction, mints [2]int) bool {
	if mints[0] < 0 {
		return true
	}
	a, okA := AccountAt(ix, mints[0])
	b, okB := AccountAt(ix, mints[1])
	if !okA || !okB {
		return false
	}
	in, out := result.UserToPool.Token, result.PoolToUser.Token
	return (in == a && out == b) || (in == b && out == a)
}

// validateCreateLayout 只建池的指令没有用户资金账户，只要求池子账户存在
func validateCreateLayout(layout *LiquidityLayout, accountsLen int) bool {
	idx := layout.PoolAccountIndex
	inRange := func(index int) bool { return index < accountsLen }
	return idx.Pool >= 0 && inRange(idx.Pool) &&
		inRange(idx.Token0Mint) && inRange(idx.Token1Mint) &&
		inRange(idx.PoolToken0) && inRange(idx.PoolToken1) &&
		inRange(idx.User)
}
