package raydiumv4

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/types"
)

// rayLogKind 日志扫描器对 "ray_log: " 前缀事件的 Kind
const rayLogKind = "ray_log"

// 来源：https://github.com/raydium-io/raydium-amm/blob/master/program/src/log.rs
const (
	LogInit        = 0
	LogDeposit     = 1
	LogWithdraw    = 2
	LogSwapBaseIn  = 3
	LogSwapBaseOut = 4
)

// SwapDirection ray_log 中的兑换方向
const (
	DirectionPC2Coin = 1 // 支付 pc（quote）获得 coin（base）
	DirectionCoin2PC = 2
)

// RayLog ray_log 的解码结果：InitLog / DepositLog / WithdrawLog / SwapBaseInLog / SwapBaseOutLog
type RayLog interface {
	isRayLog()
}

type InitLog struct {
	Time         uint64
	PcDecimals   uint8
	CoinDecimals uint8
	PcLotSize    uint64
	CoinLotSize  uint64
	PcAmount     uint64
	CoinAmount   uint64
	Market       types.Pubkey
}

type DepositLog struct {
	MaxCoin    uint64
	MaxPc      uint64
	Base       uint64
	PoolCoin   uint64
	PoolPc     uint64
	PoolLp     uint64
	CalcPnlX   layout.Uint128
	CalcPnlY   layout.Uint128
	DeductCoin uint64
	DeductPc   uint64
	MintLp     uint64
}

type WithdrawLog struct {
	WithdrawLp uint64
	UserLp     uint64
	PoolCoin   uint64
	PoolPc     uint64
	PoolLp     uint64
	CalcPnlX   layout.Uint128
	CalcPnlY   layout.Uint128
	OutCoin    uint64
	OutPc      uint64
}

type SwapBaseInLog struct {
	AmountIn   uint64
	MinimumOut uint64
	Direction  uint64
	UserSource uint64
	PoolCoin   uint64
	PoolPc     uint64
	OutAmount  uint64
}

type SwapBaseOutLog struct {
	MaxIn      uint64
	AmountOut  uint64
	Direction  uint64
	UserSource uint64
	PoolCoin   uint64
	PoolPc     uint64
	DeductIn   uint64
}

func (InitLog) isRayLog()        {}
func (DepositLog) isRayLog()     {}
func (WithdrawLog) isRayLog()    {}
func (SwapBaseInLog) isRayLog()  {}
func (SwapBaseOutLog) isRayLog() {}

func u64Fields(names ...string) []layout.Field {
	fields := make([]layout.Field, len(names))
	for i, n := range names {
		fields[i] = layout.Field{Name: n, Kind: layout.KindU64}
	}
	return fields
}

var (
	initLogLayout = layout.NewStruct("InitLog",
		layout.Field{Name: "time", Kind: layout.KindU64},
		layout.Field{Name: "pc_decimals", Kind: layout.KindU8},
		layout.Field{Name: "coin_decimals", Kind: layout.KindU8},
		layout.Field{Name: "pc_lot_size", Kind: layout.KindU64},
		layout.Field{Name: "coin_lot_size", Kind: layout.KindU64},
		layout.Field{Name: "pc_amount", Kind: layout.KindU64},
		layout.Field{Name: "coin_amount", Kind: layout.KindU64},
		layout.Field{Name: "market", Kind: layout.KindPubkey},
	)
	depositLogLayout = layout.NewStruct("DepositLog", append(
		u64Fields("max_coin", "max_pc", "base", "pool_coin", "pool_pc", "pool_lp"),
		layout.Field{Name: "calc_pnl_x", Kind: layout.KindU128},
		layout.Field{Name: "calc_pnl_y", Kind: layout.KindU128},
		layout.Field{Name: "deduct_coin", Kind: layout.KindU64},
		layout.Field{Name: "deduct_pc", Kind: layout.KindU64},
		layout.Field{Name: "mint_lp", Kind: layout.KindU64},
	)...)
	withdrawLogLayout = layout.NewStruct("WithdrawLog", append(
		u64Fields("withdraw_lp", "user_lp", "pool_coin", "pool_pc", "pool_lp"),
		layout.Field{Name: "calc_pnl_x", Kind: layout.KindU128},
		layout.Field{Name: "calc_pnl_y", Kind: layout.KindU128},
		layout.Field{Name: "out_coin", Kind: layout.KindU64},
		layout.Field{Name: "out_pc", Kind: layout.KindU64},
	)...)
	swapBaseInLogLayout = layout.NewStruct("SwapBaseInLog",
		u64Fields("amount_in", "minimum_out", "direction", "user_source", "pool_coin", "pool_pc", "out_amount")...)
	swapBaseOutLogLayout = layout.NewStruct("SwapBaseOutLog",
		u64Fields("max_in", "amount_out", "direction", "user_source", "pool_coin", "pool_pc", "deduct_in")...)
)

func decodeWith(s *layout.Struct, build func(layout.Record) RayLog) discriminator.DecodeFunc[RayLog] {
	return func(body []byte) (RayLog, error) {
		rec, _, err := s.Decode(body, 0)
		if err != nil {
			return nil, err
		}
		return build(rec), nil
	}
}

var logRegistry = discriminator.New[RayLog]("raydiumv4-log", discriminator.TagWidth,
	discriminator.Tag("Init", []byte{LogInit}, decodeWith(initLogLayout, func(r layout.Record) RayLog {
		return InitLog{
			Time:         r.U64("time"),
			PcDecimals:   r.U8("pc_decimals"),
			CoinDecimals: r.U8("coin_decimals"),
			PcLotSize:    r.U64("pc_lot_size"),
			CoinLotSize:  r.U64("coin_lot_size"),
			PcAmount:     r.U64("pc_amount"),
			CoinAmount:   r.U64("coin_amount"),
			Market:       r.Pubkey("market"),
		}
	})),
	discriminator.Tag("Deposit", []byte{LogDeposit}, decodeWith(depositLogLayout, func(r layout.Record) RayLog {
		return DepositLog{
			MaxCoin:    r.U64("max_coin"),
			MaxPc:      r.U64("max_pc"),
			Base:       r.U64("base"),
			PoolCoin:   r.U64("pool_coin"),
			PoolPc:     r.U64("pool_pc"),
			PoolLp:     r.U64("pool_lp"),
			CalcPnlX:   r.U128("calc_pnl_x"),
			CalcPnlY:   r.U128("calc_pnl_y"),
			DeductCoin: r.U64("deduct_coin"),
			DeductPc:   r.U64("deduct_pc"),
			MintLp:     r.U64("mint_lp"),
		}
	})),
	discriminator.Tag("Withdraw", []byte{LogWithdraw}, decodeWith(withdrawLogLayout, func(r layout.Record) RayLog {
		return WithdrawLog{
			WithdrawLp: r.U64("withdraw_lp"),
			UserLp:     r.U64("user_lp"),
			PoolCoin:   r.U64("pool_coin"),
			PoolPc:     r.U64("pool_pc"),
			PoolLp:     r.U64("pool_lp"),
			CalcPnlX:   r.U128("calc_pnl_x"),
			CalcPnlY:   r.U128("calc_pnl_y"),
			OutCoin:    r.U64("out_coin"),
			OutPc:      r.U64("out_pc"),
		}
	})),
	discriminator.Tag("SwapBaseIn", []byte{LogSwapBaseIn}, decodeWith(swapBaseInLogLayout, func(r layout.Record) RayLog {
		return SwapBaseInLog{
			AmountIn:   r.U64("amount_in"),
			MinimumOut: r.U64("minimum_out"),
			Direction:  r.U64("direction"),
			UserSource: r.U64("user_source"),
			PoolCoin:   r.U64("pool_coin"),
			PoolPc:     r.U64("pool_pc"),
			OutAmount:  r.U64("out_amount"),
		}
	})),
	discriminator.Tag("SwapBaseOut", []byte{LogSwapBaseOut}, decodeWith(swapBaseOutLogLayout, func(r layout.Record) RayLog {
		return SwapBaseOutLog{
			MaxIn:      r.U64("max_in"),
			AmountOut:  r.U64("amount_out"),
			Direction:  r.U64("direction"),
			UserSource: r.U64("user_source"),
			PoolCoin:   r.U64("pool_coin"),
			PoolPc:     r.U64("pool_pc"),
			DeductIn:   r.U64("deduct_in"),
		}
	})),
)

// DecodeRayLog 解码 ray_log 的 base64 内容；未知类型返回 ok=false
func DecodeRayLog(data []byte) (RayLog, bool, error) {
	m, err := logRegistry.Dispatch(data)
	if err != nil {
		return nil, true, err
	}
	return m.Value, m.Known, nil
}

// frameRayLog 取出 ix 调用帧内的 ray_log，解码失败记为告警并返回 nil
func frameRayLog(ctx *common.ParserContext, ix *core.AdaptedInstruction) RayLog {
	e, ok := ctx.FrameLogEvent(ix, rayLogKind)
	if !ok {
		return nil
	}
	log, known, err := DecodeRayLog(e.Data)
	if err != nil {
		ctx.WarnDecode(ix, "ray_log", err)
		return nil
	}
	if !known {
		return nil
	}
	return log
}
