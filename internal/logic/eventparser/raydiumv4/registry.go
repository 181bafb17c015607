package raydiumv4

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

const ammName = "RaydiumV4"

// 来源, https://github.com/raydium-io/raydium-amm/blob/master/program/src/instruction.rs
const (
	Initialize2 = 1
	Deposit     = 3
	Withdraw    = 4
	SwapBaseIn  = 9
	SwapBaseOut = 11
)

// Instruction 指令类型标签；参数不参与解析，成交金额取自转账腿或 ray_log
type Instruction uint8

func tag(name string, t uint8) discriminator.Entry[Instruction] {
	return discriminator.Tag[Instruction](name, []byte{t}, func([]byte) (Instruction, error) {
		return Instruction(t), nil
	})
}

var instructionRegistry = discriminator.New[Instruction]("raydiumv4", discriminator.TagWidth,
	tag("Initialize2", Initialize2),
	tag("Deposit", Deposit),
	tag("Withdraw", Withdraw),
	tag("SwapBaseIn", SwapBaseIn),
	tag("SwapBaseOut", SwapBaseOut),
)

// RegisterHandlers 注册 RaydiumV4 的所有指令处理逻辑
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.RaydiumV4Program] = handleInstruction
}

// handleInstruction 是 RaydiumV4 的主分发入口
func handleInstruction(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]
	m, err := instructionRegistry.Dispatch(ix.Data)
	if err != nil {
		logger.Warnf("[RaydiumV4:Dispatch] 指令解码失败: %v, tx=%s", err, ctx.TxHashString())
		ctx.WarnDecode(ix, "raydiumv4 instruction", err)
		return -1
	}
	if !m.Known {
		ctx.Unknown(ix)
		return -1
	}

	switch m.Value {
	case SwapBaseIn, SwapBaseOut:
		return extractSwapEvent(ctx, instrs, current, frameRayLog(ctx, ix))
	case Deposit:
		return extractAddLiquidityEvent(ctx, instrs, current)
	case Withdraw:
		return extractRemoveLiquidityEvent(ctx, instrs, current)
	case Initialize2:
		return extractInitializeEvent(ctx, instrs, current, frameRayLog(ctx, ix))
	default:
		return -1
	}
}
