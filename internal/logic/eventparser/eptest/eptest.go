// Package eptest 为各协议解析包的单元测试构造解析上下文。
package eptest

import (
	"testing"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/logic/classifier"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/eventparser/spltoken"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/logic/txadapter"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/require"
)

// Context 适配、展平、扫描日志后构造 ParserContext；pools 可为 nil
func Context(t testing.TB, raw *core.RawTransaction, pools *cache.PoolCache) (*common.ParserContext, []*core.AdaptedInstruction) {
	t.Helper()
	tx, err := txadapter.Adapt(raw)
	require.NoError(t, err)
	instrs, err := classifier.Classify(tx)
	require.NoError(t, err)
	spltoken.FillInitAccountBalances(tx, instrs)
	logs := logscanner.Scan(tx.LogMessages, common.LogScanOptions())
	return common.BuildParserContext(tx, instrs, logs, pools), instrs
}

// Run 只注册 register 给出的 handler 并解析整笔交易
func Run(
	t testing.TB,
	raw *core.RawTransaction,
	pools *cache.PoolCache,
	register func(map[types.Pubkey]common.InstructionHandler),
) *common.ParserContext {
	t.Helper()
	ctx, instrs := Context(t, raw, pools)
	handlers := make(map[types.Pubkey]common.InstructionHandler)
	register(handlers)
	common.Dispatch(ctx, instrs, handlers)
	return ctx
}

// Trades 取出上下文中的全部成交
func Trades(ctx *common.ParserContext) []*core.TradeInfo {
	var out []*core.TradeInfo
	for _, e := range ctx.Events() {
		if e.Kind == core.EventTrade {
			out = append(out, e.Trade)
		}
	}
	return out
}

// Pools 取出上下文中的全部池子事件
func Pools(ctx *common.ParserContext) []*core.PoolEvent {
	var out []*core.PoolEvent
	for _, e := range ctx.Events() {
		if e.Kind == core.EventPool {
			out = append(out, e.Pool)
		}
	}
	return out
}
