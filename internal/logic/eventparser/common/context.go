package common

import (
	"errors"
	"fmt"
	"io"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/logscanner"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/types"
)

// ParserContext 是传入每个事件 handler 的解析上下文。
// 它包含当前交易的完整结构、转账索引、日志事件与池子元数据缓存，
// 并收集解析产出的记录、告警与未知指令。单笔交易内单协程使用。
type ParserContext struct {
	Tx        *core.AdaptedTx // 适配后的交易
	TxIndex   uint32          // 当前交易在区块中的位置，用于生成 event id
	Slot      uint64
	BlockTime int64
	TxHash    []byte
	Signers   []types.Pubkey

	Balances  map[types.Pubkey]*core.TokenBalance // tokenAccount → TokenBalance
	Transfers TransferData                        // 父指令 → 其直接发起的 token / SOL 转账
	Logs      *logscanner.Result                  // 日志中恢复出的事件
	Pools     *cache.PoolCache                    // 可为 nil

	events   []*core.Event
	warnings []core.ParseWarning
	unknowns []core.UnknownInstruction
	missing  []types.Pubkey
	invokes  []int // Position → 该指令是同程序指令中的第几次调用
}

// InstructionHandler 定义了统一的指令解析函数签名。
//
// 参数：
//   - ctx:     当前解析上下文
//   - instrs:  按执行顺序展平后的指令列表
//   - current: 当前正在处理的指令索引（instrs[current]）
//
// 返回值 next 为下一条待处理的指令索引；next <= current 表示未消费，由调度方继续向后。
type InstructionHandler func(ctx *ParserContext, instrs []*core.AdaptedInstruction, current int) (next int)

// BuildParserContext 构造事件解析上下文；instrs 为 classifier 的输出
func BuildParserContext(tx *core.AdaptedTx, instrs []*core.AdaptedInstruction, logs *logscanner.Result, pools *cache.PoolCache) *ParserContext {
	ctx := &ParserContext{
		Tx:       tx,
		TxIndex:  tx.TxIndex,
		TxHash:   tx.Signature,
		Signers:  tx.Signers,
		Balances: tx.Balances,
		Logs:     logs,
		Pools:    pools,
		invokes:  invokeOrdinals(instrs),
	}
	if tx.TxCtx != nil {
		ctx.Slot = tx.TxCtx.Slot
		ctx.BlockTime = tx.TxCtx.BlockTime
	}
	ctx.Transfers = BuildTransferData(ctx, instrs)
	return ctx
}

func (ctx *ParserContext) TxHashString() string {
	return types.Signature(ctx.TxHash).String()
}

// Signer 交易的第一个签名者，即手续费支付方
func (ctx *ParserContext) Signer() types.Pubkey {
	if len(ctx.Signers) == 0 {
		return types.Pubkey{}
	}
	return ctx.Signers[0]
}

// AddTrade 记录一条成交，补齐交易级公共字段
func (ctx *ParserContext) AddTrade(ix *core.AdaptedInstruction, trade *core.TradeInfo) {
	trade.ProgramID = ix.ProgramID
	trade.Slot = ctx.Slot
	trade.Timestamp = ctx.BlockTime
	trade.Signature = ctx.TxHashString()
	trade.Idx = ix.Idx()
	ctx.events = append(ctx.events, &core.Event{
		ID:    core.BuildEventID(ctx.TxIndex, ix.IxIndex, ix.InnerIndex),
		Kind:  core.EventTrade,
		Key:   trade.Pool.Bytes(),
		Trade: trade,
	})
}

// AddPool 记录一条池子事件
func (ctx *ParserContext) AddPool(ix *core.AdaptedInstruction, event *core.PoolEvent) {
	event.ProgramID = ix.ProgramID
	event.Slot = ctx.Slot
	event.Timestamp = ctx.BlockTime
	event.Signature = ctx.TxHashString()
	event.Idx = ix.Idx()
	ctx.events = append(ctx.events, &core.Event{
		ID:   core.BuildEventID(ctx.TxIndex, ix.IxIndex, ix.InnerIndex),
		Kind: core.EventPool,
		Key:  event.Pool.Bytes(),
		Pool: event,
	})
}

// Warn 记录单条记录被跳过的原因
func (ctx *ParserContext) Warn(kind core.WarningKind, ix *core.AdaptedInstruction, format string, args ...any) {
	ctx.warnings = append(ctx.warnings, core.ParseWarning{
		Kind:      kind,
		ProgramID: ix.ProgramID,
		Idx:       ix.Idx(),
		Message:   fmt.Sprintf(format, args...),
	})
}

// WarnDecode 按解码错误类型记录 TruncatedPayload / InvalidEncoding
func (ctx *ParserContext) WarnDecode(ix *core.AdaptedInstruction, what string, err error) {
	kind := core.WarnInvalidEncoding
	if errors.Is(err, layout.ErrTruncatedPayload) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		kind = core.WarnTruncatedPayload
	}
	ctx.Warn(kind, ix, "%s: %v", what, err)
}

// Unknown 记录未识别的指令
func (ctx *ParserContext) Unknown(ix *core.AdaptedInstruction) {
	ctx.unknowns = append(ctx.unknowns, core.UnknownInstruction{
		ProgramID: ix.ProgramID,
		Idx:       ix.Idx(),
		Data:      ix.Data,
	})
}

// LookupPool 查询池子元数据，未命中时登记到 missing 列表（去重）
func (ctx *ParserContext) LookupPool(pool types.Pubkey) (cache.PoolInfo, bool) {
	if ctx.Pools != nil {
		if info, ok := ctx.Pools.Get(pool); ok {
			return info, true
		}
	}
	for _, m := range ctx.missing {
		if m == pool {
			return cache.PoolInfo{}, false
		}
	}
	ctx.missing = append(ctx.missing, pool)
	return cache.PoolInfo{}, false
}

// invokeOrdinals 展平序列与日志中的 invoke 一一对应，按程序分别计数
func invokeOrdinals(instrs []*core.AdaptedInstruction) []int {
	out := make([]int, len(instrs))
	seen := make(map[types.Pubkey]int)
	for i, ix := range instrs {
		out[i] = seen[ix.ProgramID]
		seen[ix.ProgramID]++
	}
	return out
}

// FrameLogEvents 返回 ix 自身调用帧内输出的 kind 日志事件，不含其子调用帧。
// 每条指令只读自己的帧，前序指令是否识别不影响后续指令的对齐。
func (ctx *ParserContext) FrameLogEvents(ix *core.AdaptedInstruction, kind string) []logscanner.Event {
	if ctx.Logs == nil || ix.Position < 0 || ix.Position >= len(ctx.invokes) {
		return nil
	}
	return ctx.Logs.InFrame(ix.ProgramID.String(), ctx.invokes[ix.Position], kind)
}

// FrameLogEvent 返回 ix 帧内第一条 kind 日志事件
func (ctx *ParserContext) FrameLogEvent(ix *core.AdaptedInstruction, kind string) (logscanner.Event, bool) {
	if events := ctx.FrameLogEvents(ix, kind); len(events) > 0 {
		return events[0], true
	}
	return logscanner.Event{}, false
}

func (ctx *ParserContext) Events() []*core.Event { return ctx.events }

func (ctx *ParserContext) Warnings() []core.ParseWarning { return ctx.warnings }

func (ctx *ParserContext) Unknowns() []core.UnknownInstruction { return ctx.unknowns }

func (ctx *ParserContext) MissingPools() []types.Pubkey { return ctx.missing }
