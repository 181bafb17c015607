package pumpfunamm

import (
	"fmt"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"

	"github.com/near/borsh-go"
)

const ammName = "PumpfunAMM"

// Instruction 解码后的指令参数
type Instruction interface {
	isInstruction()
}

// SwapArgs buy: (base_amount_out, max_quote_amount_in)；sell: (base_amount_in, min_quote_amount_out)
type SwapArgs struct {
	BaseAmount uint64
	QuoteLimit uint64
	IsBuy      bool `borsh_skip:"true"`
}

type CreatePoolArgs struct {
	Index         uint16
	BaseAmountIn  uint64
	QuoteAmountIn uint64
}

type DepositArgs struct {
	LpTokenAmountOut uint64
	MaxBaseAmountIn  uint64
	MaxQuoteAmountIn uint64
}

type WithdrawArgs struct {
	LpTokenAmountIn   uint64
	MinBaseAmountOut  uint64
	MinQuoteAmountOut uint64
}

func (SwapArgs) isInstruction()       {}
func (CreatePoolArgs) isInstruction() {}
func (DepositArgs) isInstruction()    {}
func (WithdrawArgs) isInstruction()   {}

// decodeArgs 先按固定长度判定截断，再交给 borsh 解码
func decodeArgs[T Instruction](size int) discriminator.DecodeFunc[Instruction] {
	return func(body []byte) (Instruction, error) {
		var args T
		if len(body) < size {
			return nil, fmt.Errorf("%T: need %d bytes, have %d: %w", args, size, len(body), layout.ErrTruncatedPayload)
		}
		if err := borsh.Deserialize(&args, body); err != nil {
			return nil, fmt.Errorf("%T: %v: %w", args, err, layout.ErrInvalidEncoding)
		}
		return args, nil
	}
}

func decodeSwap(isBuy bool) discriminator.DecodeFunc[Instruction] {
	decode := decodeArgs[SwapArgs](16)
	return func(body []byte) (Instruction, error) {
		v, err := decode(body)
		if err != nil {
			return nil, err
		}
		args := v.(SwapArgs)
		args.IsBuy = isBuy
		return args, nil
	}
}

var instructionRegistry = discriminator.New[Instruction]("pumpfunamm", discriminator.EventWidth,
	discriminator.Signature[Instruction]("global:buy", decodeSwap(true)),
	discriminator.Signature[Instruction]("global:sell", decodeSwap(false)),
	discriminator.Signature[Instruction]("global:create_pool", decodeArgs[CreatePoolArgs](18)),
	discriminator.Signature[Instruction]("global:deposit", decodeArgs[DepositArgs](24)),
	discriminator.Signature[Instruction]("global:withdraw", decodeArgs[WithdrawArgs](24)),
)

// RegisterHandlers 注册 Pump.fun AMM 程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.PumpFunAMMProgram] = handleInstruction
}

func handleInstruction(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]
	if common.IsCPIEvent(ix.Data) {
		return -1
	}

	m, err := instructionRegistry.Dispatch(ix.Data)
	if err != nil {
		logger.Warnf("[PumpfunAMM:Dispatch] 指令解码失败: %v, tx=%s", err, ctx.TxHashString())
		ctx.WarnDecode(ix, "pumpfunamm instruction", err)
		return -1
	}
	if !m.Known {
		ctx.Unknown(ix)
		return -1
	}

	switch args := m.Value.(type) {
	case SwapArgs:
		return extractSwapEvent(ctx, instrs, current, args)
	case CreatePoolArgs:
		return extractCreatePoolEvent(ctx, instrs, current)
	case DepositArgs:
		return extractAddLiquidityEvent(ctx, instrs, current)
	case WithdrawArgs:
		return extractRemoveLiquidityEvent(ctx, instrs, current)
	default:
		return -1
	}
}
