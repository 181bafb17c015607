package progress

// SlotStatus 表示 slot 的处理状态（统一 Redis 与 DB 编码）
type SlotStatus int

const (
	SlotUnknown   SlotStatus = 0 // Redis 不存在
	SlotProcessed SlotStatus = 1 // 已处理并全部投递
	SlotInvalid   SlotStatus = 2 // 结构错误或投递失败，跳过
	SlotPending   SlotStatus = 3 // 处理中（仅 Redis 使用）
)

func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotInvalid:
		return "invalid"
	case SlotPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Source 表示区块来源（grpc 实时流、replay 重放）
const (
	SourceUnknown int16 = 0
	SourceGrpc    int16 = 1
	SourceReplay  int16 = 2
)

func SourceName(src int16) string {
	switch src {
	case SourceGrpc:
		return "grpc"
	case SourceReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// SlotRecord 一条待写入 DB 的 slot 记录
type SlotRecord struct {
	Slot        uint64     // Solana slot
	Source      int16      // 1=grpc, 2=replay
	BlockTime   int64      // Unix timestamp（秒）
	Status      SlotStatus // 1=已处理，2=无效
	TxCount     int        // 参与解析的交易数
	RecordCount int        // 投递的记录数
}
