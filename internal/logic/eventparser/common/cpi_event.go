package common

import (
	"bytes"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/tools"
	"dex-parser-sol/internal/types"
)

// CPIEventPrefix Anchor emit_cpi! 自调用事件指令的固定前缀（sha256("anchor:event")[:8]）
var CPIEventPrefix = []byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

// IsCPIEvent 判断指令数据是否为自调用事件
func IsCPIEvent(data []byte) bool {
	return len(data) >= len(CPIEventPrefix) && bytes.Equal(data[:len(CPIEventPrefix)], CPIEventPrefix)
}

// FindCPIEvent 在 instrs[current] 的调用子树内查找 program 发出的第一条自调用事件，返回其位置，未找到返回 -1。
func FindCPIEvent(instrs []*core.AdaptedInstruction, current int, program types.Pubkey) int {
	if found := FindCPIEvents(instrs, current, program); len(found) > 0 {
		return found[0]
	}
	return -1
}

// FindCPIEvents 按执行顺序返回 instrs[current] 调用子树内 program 发出的全部自调用事件位置。
// 有 stack height 时以调用深度界定子树；否则遇到同一程序的下一条非事件指令即停止。
func FindCPIEvents(instrs []*core.AdaptedInstruction, current int, program types.Pubkey) []int {
	cur := instrs[current]
	curHeight := cur.StackHeight
	var found []int
	for j := current + 1; j < len(instrs) && instrs[j].IxIndex == cur.IxIndex; j++ {
		ix := instrs[j]
		if curHeight > 0 && ix.StackHeight > 0 && ix.StackHeight <= curHeight {
			break
		}
		if ix.ProgramID != program {
			continue
		}
		if IsCPIEvent(ix.Data) {
			found = append(found, j)
			continue
		}
		if ix.StackHeight == 0 {
			break
		}
	}
	return found
}

// CPIEventBody 去掉自调用前缀后的事件数据（含 8 字节事件判别码）
func CPIEventBody(ix *core.AdaptedInstruction) []byte {
	return ix.Data[len(CPIEventPrefix):]
}

// DecimalsOf 依次从 token 账户余额、交易内 mint 精度、内置 quote 精度中取 decimals
func (ctx *ParserContext) DecimalsOf(tokenAccount, mint types.Pubkey) (uint8, bool) {
	if bal, ok := ctx.Balances[tokenAccount]; ok {
		return bal.Decimals, true
	}
	if d, ok := ctx.Tx.GetDecimalsByMint(mint); ok {
		return d, true
	}
	return tools.KnownDecimals(mint)
}
