package eventparser

import (
	"sync"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/eventparser/meteoradlmm"
	"dex-parser-sol/internal/logic/eventparser/orcawhirlpool"
	"dex-parser-sol/internal/logic/eventparser/pumpfun"
	"dex-parser-sol/internal/logic/eventparser/pumpfunamm"
	"dex-parser-sol/internal/logic/eventparser/raydiumclmm"
	"dex-parser-sol/internal/logic/eventparser/raydiumcpmm"
	"dex-parser-sol/internal/logic/eventparser/raydiumv4"
	"dex-parser-sol/internal/types"
)

// handlers 是 Solana ProgramID → 对应事件解析 handler 的路由表。
// 所有协议模块通过 RegisterHandlers 注册进该表，注册完成后只读。
var (
	handlers = map[types.Pubkey]common.InstructionHandler{}
	initOnce sync.Once
)

// Init 注册所有协议的 handler，可重复调用
func Init() {
	initOnce.Do(func() {
		RegisterHandlers(handlers)
	})
}

// RegisterHandlers 把全部协议的 handler 写入 m
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	raydiumv4.RegisterHandlers(m)
	raydiumclmm.RegisterHandlers(m)
	raydiumcpmm.RegisterHandlers(m)
	pumpfunamm.RegisterHandlers(m)
	pumpfun.RegisterHandlers(m)
	meteoradlmm.RegisterHandlers(m)
	orcawhirlpool.RegisterHandlers(m)
}

// ExtractEvents 按执行顺序把展平后的指令交给各协议 handler，产出记录写入 ctx
func ExtractEvents(ctx *common.ParserContext, instrs []*core.AdaptedInstruction) []*core.Event {
	Init()
	common.Dispatch(ctx, instrs, handlers)
	return ctx.Events()
}
