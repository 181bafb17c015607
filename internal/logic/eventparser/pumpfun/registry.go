package pumpfun

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

const ammName = "Pumpfun"

// Instruction 解码后的指令参数：CreateArgs / SwapArgs / MigrateArgs
type Instruction interface {
	isInstruction()
}

// CreateArgs create 指令参数；Creator 仅新版本携带
type CreateArgs struct {
	Name    string
	Symbol  string
	URI     string
	Creator types.Pubkey
}

// SwapArgs buy / sell 共用：Amount 为 token 数量，SolLimit 买入时为最大花费、卖出时为最少获得
type SwapArgs struct {
	IsBuy    bool
	Amount   uint64
	SolLimit uint64
}

type MigrateArgs struct{}

func (CreateArgs) isInstruction()  {}
func (SwapArgs) isInstruction()    {}
func (MigrateArgs) isInstruction() {}

var (
	createArgsLayout = layout.NewStruct("create",
		layout.Field{Name: "name", Kind: layout.KindString},
		layout.Field{Name: "symbol", Kind: layout.KindString},
		layout.Field{Name: "uri", Kind: layout.KindString},
		layout.Field{Name: "creator", Kind: layout.KindPubkey, Trailing: true},
	)
	swapArgsLayout = layout.NewStruct("swap",
		layout.Field{Name: "amount", Kind: layout.KindU64},
		layout.Field{Name: "sol_limit", Kind: layout.KindU64},
	)
)

func decodeCreate(body []byte) (Instruction, error) {
	rec, _, err := createArgsLayout.Decode(body, 0)
	if err != nil {
		return nil, err
	}
	return CreateArgs{
		Name:    rec.String("name"),
		Symbol:  rec.String("symbol"),
		URI:     rec.String("uri"),
		Creator: rec.Pubkey("creator"),
	}, nil
}

func decodeSwap(isBuy bool) discriminator.DecodeFunc[Instruction] {
	return func(body []byte) (Instruction, error) {
		rec, _, err := swapArgsLayout.Decode(body, 0)
		if err != nil {
			return nil, err
		}
		return SwapArgs{IsBuy: isBuy, Amount: rec.U64("amount"), SolLimit: rec.U64("sol_limit")}, nil
	}
}

func decodeMigrate([]byte) (Instruction, error) {
	return MigrateArgs{}, nil
}

var instructionRegistry = discriminator.New[Instruction]("pumpfun", discriminator.EventWidth,
	discriminator.Signature[Instruction]("global:create", decodeCreate),
	discriminator.Signature[Instruction]("global:buy", decodeSwap(true)),
	discriminator.Signature[Instruction]("global:sell", decodeSwap(false)),
	discriminator.Signature[Instruction]("global:migrate", decodeMigrate),
)

// RegisterHandlers 注册 Pump.fun 联合曲线程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.PumpFunProgram] = handleInstruction
}

func handleInstruction(
	ctx *common.ParserContext,
	instrs []*core.AdaptedInstruction,
	current int,
) int {
	ix := instrs[current]

	// 自调用事件由所属的 buy / sell / create 消费
	if common.IsCPIEvent(ix.Data) {
		return -1
	}

	m, err := instructionRegistry.Dispatch(ix.Data)
	if err != nil {
		logger.Warnf("[Pumpfun:Dispatch] 指令解码失败: %v, tx=%s", err, ctx.TxHashString())
		ctx.WarnDecode(ix, "pumpfun instruction", err)
		return -1
	}
	if !m.Known {
		ctx.Unknown(ix)
		return -1
	}

	switch args := m.Value.(type) {
	case CreateArgs:
		return extractCreateEvent(ctx, instrs, current, args)
	case SwapArgs:
		return extractSwapEvent(ctx, instrs, current, args)
	case MigrateArgs:
		return extractMigrateEvent(ctx, instrs, current)
	default:
		return -1
	}
}

// eventSource 一条指令对应的事件：来自自调用指令时 Index 为其位置，来自日志时为 -1
type eventSource struct {
	Event Event
	Index int
}

// findEvents 优先取当前指令子树内的自调用事件，否则取当前指令调用帧内的日志事件
func findEvents(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int, what string) []eventSource {
	var out []eventSource
	for _, idx := range common.FindCPIEvents(instrs, current, consts.PumpFunProgram) {
		ev, err := DecodeEvent(common.CPIEventBody(instrs[idx]))
		if err != nil {
			ctx.WarnDecode(instrs[idx], what, err)
			continue
		}
		out = append(out, eventSource{Event: ev, Index: idx})
	}
	if len(out) > 0 {
		return out
	}

	for _, e := range ctx.FrameLogEvents(instrs[current], logscanner.KindData) {
		ev, err := DecodeEvent(e.Data)
		if err != nil {
			ctx.WarnDecode(instrs[current], what, err)
			continue
		}
		out = append(out, eventSource{Event: ev, Index: -1})
	}
	return out
}

// consumed 返回 handler 的 next：跳过已消费的事件指令
func consumed(current int, events []eventSource) int {
	next := current + 1
	for _, e := range events {
		if e.Index >= next {
			next = e.Index + 1
		}
	}
	return next
}
