package common

import (
	"fmt"
	"runtime/debug"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"
)

// RayLogPrefix Raydium AMM V4 通过 "Program log: ray_log: <base64>" 输出 swap 结果
const RayLogPrefix = "ray_log: "

// LogScanOptions 事件解析关心的日志：全部 DEX 程序的 "Program data:" 与 ray_log
func LogScanOptions() logscanner.Options {
	programs := make([]string, 0, len(consts.DexPrograms))
	for program := range consts.DexPrograms {
		programs = append(programs, program.String())
	}
	return logscanner.Options{
		Programs:    programs,
		LogPrefixes: []string{RayLogPrefix},
	}
}

// Dispatch 按执行顺序把每条指令交给其 ProgramID 对应的 handler。
// 单个 handler panic 只影响当前指令：记录 HandlerPanic 告警后继续处理后续指令。
func Dispatch(ctx *ParserContext, instrs []*core.AdaptedInstruction, handlers map[types.Pubkey]InstructionHandler) {
	for i := 0; i < len(instrs); {
		ix := instrs[i]
		if handler, ok := handlers[ix.ProgramID]; ok {
			if next := safeInvoke(ctx, handler, instrs, i); next > i {
				i = next
				continue
			}
		}
		i++
	}
}

func safeInvoke(ctx *ParserContext, handler InstructionHandler, instrs []*core.AdaptedInstruction, current int) (next int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[eventparser:Dispatch] handler panic: %v, idx=%s, stack=%s, tx=%s",
				r, instrs[current].Idx(), debug.Stack(), ctx.TxHashString())
			ctx.Warn(core.WarnHandlerPanic, instrs[current], "%s", fmt.Sprint(r))
			next = -1
		}
	}()
	return handler(ctx, instrs, current)
}
