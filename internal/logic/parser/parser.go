// Package parser 把单笔原始交易串联成完整的解析流程：
// 适配 → 展平 → 日志扫描 → 转账索引 → 协议 handler 分发。
package parser

import (
	"fmt"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/logic/classifier"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/eventparser/spltoken"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/logic/txadapter"
	"dex-parser-sol/internal/types"
	"dex-parser-sol/internal/utils"
)

// Parser 无状态，除共享的池子元数据缓存外不持有任何交易数据，可被多个协程同时使用
type Parser struct {
	cache *cache.PoolCache
}

// New 创建解析器；pools 为 nil 时依赖外部元数据的路径只记录缺失
func New(pools *cache.PoolCache) *Parser {
	eventparser.Init()
	return &Parser{cache: pools}
}

// Cache 返回解析器使用的池子缓存，可能为 nil
func (p *Parser) Cache() *cache.PoolCache {
	return p.cache
}

// ParseTransaction 解析单笔交易。
// 结构性错误（账户下标越界、内层指令组越界等）返回 (nil, err)；
// 单条 payload 的问题只记录在结果的 Warnings 中。
// 执行失败的交易没有任何链上状态变化，返回空结果。
func (p *Parser) ParseTransaction(raw *core.RawTransaction) (*core.ParseResult, error) {
	if raw == nil {
		return nil, core.ErrInvalidTransaction
	}
	tx, err := txadapter.Adapt(raw)
	if err != nil {
		return nil, fmt.Errorf("adapt tx %s: %w", types.Signature(raw.Signature), err)
	}

	result := &core.ParseResult{
		Signature: types.Signature(tx.Signature).String(),
		Slot:      raw.Slot,
		TxIndex:   tx.TxIndex,
	}
	if raw.Failed {
		return result, nil
	}

	instrs, err := classifier.Classify(tx)
	if err != nil {
		return nil, fmt.Errorf("classify tx %s: %w", result.Signature, err)
	}
	spltoken.FillInitAccountBalances(tx, instrs)

	logs := logscanner.Scan(tx.LogMessages, common.LogScanOptions())
	ctx := common.BuildParserContext(tx, instrs, logs, p.cache)

	result.Events = eventparser.ExtractEvents(ctx, instrs)
	result.Warnings = append(append([]core.ParseWarning(nil), raw.Warnings...), ctx.Warnings()...)
	result.Unknowns = ctx.Unknowns()
	result.MissingPools = ctx.MissingPools()
	result.LogTruncated = logs.Truncated
	return result, nil
}

// BatchResult 批量解析中单笔交易的结果，Err 非空时 Result 为 nil
type BatchResult struct {
	Raw    *core.RawTransaction
	Result *core.ParseResult
	Err    error
}

// ParseBatch 并发解析一批交易，输出顺序与输入一致。
// 单笔交易的结构性错误只体现在对应的 BatchResult 中，不影响其它交易。
func (p *Parser) ParseBatch(raws []*core.RawTransaction, workers int) []BatchResult {
	return utils.ParallelMap(raws, workers, func(raw *core.RawTransaction) BatchResult {
		res, err := p.ParseTransaction(raw)
		return BatchResult{Raw: raw, Result: res, Err: err}
	})
}

// EncodeEvents 按 Kafka 消息格式编码全部事件，用于落盘比对与重放
func EncodeEvents(events []*core.Event) ([][]byte, error) {
	out := make([][]byte, 0, len(events))
	for _, e := range events {
		data, err := utils.EncodeRecord(uint32(e.Kind), e.Record())
		if err != nil {
			return nil, fmt.Errorf("encode event %d: %w", e.ID, err)
		}
		out = append(out, data)
	}
	return out, nil
}
