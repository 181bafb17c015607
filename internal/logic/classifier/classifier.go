// Package classifier 将主指令与 inner 指令组还原为链上实际执行顺序。
package classifier

import (
	"fmt"
	"sort"

	"dex-parser-sol/internal/logic/core"
)

// ErrInnerGroupOutOfRange inner 指令组引用了不存在的主指令
var ErrInnerGroupOutOfRange = fmt.Errorf("%w: inner group index", core.ErrAccountIndexOutOfRange)

// Classify 按执行顺序展平指令：每条主指令之后紧跟其全部 CPI 指令（深度优先，保持记录顺序）。
//
// inner 组先按所属主指令下标稳定排序；游标依次输出主指令直到组下标（含），
// 随后输出该组指令，最后补齐剩余主指令。同一下标出现多个组时 InnerIndex 连续编号。
// 返回的指令为副本，并同时写入 tx.Instructions。
func Classify(tx *core.AdaptedTx) ([]*core.AdaptedInstruction, error) {
	top := tx.TopLevel

	groups := make([]core.AdaptedInnerGroup, len(tx.InnerGroups))
	copy(groups, tx.InnerGroups)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Index < groups[j].Index
	})

	total := len(top)
	for _, g := range groups {
		if int(g.Index) >= len(top) {
			return nil, fmt.Errorf("%w: group %d, top-level instructions %d", ErrInnerGroupOutOfRange, g.Index, len(top))
		}
		total += len(g.Instructions)
	}

	out := make([]*core.AdaptedInstruction, 0, total)
	emit := func(src *core.AdaptedInstruction, inner uint16) {
		ix := *src
		ix.InnerIndex = inner
		ix.Position = len(out)
		out = append(out, &ix)
	}

	cursor := 0
	lastGroup := -1
	innerSeq := uint16(0)
	for _, g := range groups {
		for cursor <= int(g.Index) {
			emit(top[cursor], 0)
			cursor++
		}
		if int(g.Index) != lastGroup {
			lastGroup = int(g.Index)
			innerSeq = 0
		}
		for _, ix := range g.Instructions {
			innerSeq++
			emit(ix, innerSeq)
		}
	}
	for ; cursor < len(top); cursor++ {
		emit(top[cursor], 0)
	}

	tx.Instructions = out
	return out, nil
}

// OuterGroup 返回 instrs 中属于同一主指令的连续区间 [start, end)，current 为区间内任意位置
func OuterGroup(instrs []*core.AdaptedInstruction, current int) (start, end int) {
	outer := instrs[current].IxIndex
	start = current
	for start > 0 && instrs[start-1].IxIndex == outer {
		start--
	}
	end = current + 1
	for end < len(instrs) && instrs[end].IxIndex == outer {
		end++
	}
	return start, end
}
