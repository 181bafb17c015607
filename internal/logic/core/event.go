package core

import "dex-parser-sol/internal/types"

// EventKind 输出记录类别，同时作为 Kafka 消息的 4 字节类型前缀
type EventKind uint32

const (
	EventTrade EventKind = iota + 1
	EventPool
	EventDiagnostic // 未知指令、告警与缺失池子，载荷为 ParseResult
)

func (k EventKind) String() string {
	switch k {
	case EventTrade:
		return "trade"
	case EventPool:
		return "pool"
	case EventDiagnostic:
		return "diagnostic"
	}
	return "unknown"
}

// Event 按执行顺序排列的一条输出记录，Trade / Pool 二选一
type Event struct {
	ID    uint64     // slot 内唯一事件 ID（txIndex、ixIndex、innerIndex 组合）
	Kind  EventKind  // 记录类别
	Key   []byte     // Kafka 分区 key，使用池子地址
	Trade *TradeInfo // Kind == EventTrade
	Pool  *PoolEvent // Kind == EventPool
}

// Record 返回实际承载的记录，用于序列化
func (e *Event) Record() any {
	if e.Kind == EventTrade {
		return e.Trade
	}
	return e.Pool
}

// BuildEventID 构造事件唯一标识 ID（uint64），由 txIndex、ixIndex、innerIndex 组合而成：
//   - txIndex    (32 bits): 当前交易在区块中的序号
//   - ixIndex    (16 bits): 当前交易中的主指令序号
//   - innerIndex (16 bits): inner 指令的序号，主指令为 0
//
// 编码结构：
//
//	[ 32 bits txIndex ] [ 16 bits ixIndex ] [ 16 bits innerIndex ]
func BuildEventID(txIndex uint32, ixIndex uint16, innerIndex uint16) uint64 {
	return uint64(txIndex)<<32 | uint64(ixIndex)<<16 | uint64(innerIndex)
}

// ParseResult 单笔交易的解析结果
type ParseResult struct {
	Signature    string               `json:"signature"`
	Slot         uint64               `json:"slot"`
	TxIndex      uint32               `json:"txIndex"`
	Events       []*Event             `json:"-"`
	Unknowns     []UnknownInstruction `json:"unknowns,omitempty"`
	Warnings     []ParseWarning       `json:"warnings,omitempty"`
	MissingPools []types.Pubkey       `json:"missingPools,omitempty"` // 需外部拉取元数据后重新解析
	LogTruncated bool                 `json:"logTruncated,omitempty"`
}

// HasDiagnostics 是否存在需要下游关注的非致命问题
func (r *ParseResult) HasDiagnostics() bool {
	return len(r.Unknowns) > 0 || len(r.Warnings) > 0 || len(r.MissingPools) > 0 || r.LogTruncated
}

// Trades 按顺序返回全部成交记录
func (r *ParseResult) Trades() []*TradeInfo {
	out := make([]*TradeInfo, 0, len(r.Events))
	for _, e := range r.Events {
		if e.Kind == EventTrade {
			out = append(out, e.Trade)
		}
	}
	return out
}

// Pools 按顺序返回全部池子事件
func (r *ParseResult) Pools() []*PoolEvent {
	out := make([]*PoolEvent, 0)
	for _, e := range r.Events {
		if e.Kind == EventPool {
			out = append(out, e.Pool)
		}
	}
	return out
}
