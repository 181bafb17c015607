package pumpfun

import (
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/types"
)

// Event 联合曲线程序发出的事件，取值只可能是 CreateEvent / TradeEvent / CompleteEvent / UnknownEvent
type Event interface {
	isEvent()
}

// CreateEvent 新币创建；Creator 之后的字段为后续版本追加
type CreateEvent struct {
	Name                 string
	Symbol               string
	URI                  string
	Mint                 types.Pubkey
	BondingCurve         types.Pubkey
	User                 types.Pubkey
	Creator              types.Pubkey
	Timestamp            int64
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	TokenTotalSupply     uint64
}

// TradeEvent 一次买入或卖出。HasFee=false 表示旧版事件，不含储备与手续费字段
type TradeEvent struct {
	Mint                 types.Pubkey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 types.Pubkey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64
	HasFee               bool
	FeeRecipient         types.Pubkey
	FeeBasisPoints       uint64
	Fee                  uint64
	Creator              types.Pubkey
	CreatorFeeBasisPoint uint64
	CreatorFee           uint64
}

// CompleteEvent 联合曲线完成
type CompleteEvent struct {
	User         types.Pubkey
	Mint         types.Pubkey
	BondingCurve types.Pubkey
	Timestamp    int64
}

// UnknownEvent 未注册判别码的事件
type UnknownEvent struct {
	Discriminator []byte
	Raw           []byte
}

func (CreateEvent) isEvent()   {}
func (TradeEvent) isEvent()    {}
func (CompleteEvent) isEvent() {}
func (UnknownEvent) isEvent()  {}

var (
	createEventLayout = layout.NewStruct("CreateEvent",
		layout.Field{Name: "name", Kind: layout.KindString},
		layout.Field{Name: "symbol", Kind: layout.KindString},
		layout.Field{Name: "uri", Kind: layout.KindString},
		layout.Field{Name: "mint", Kind: layout.KindPubkey},
		layout.Field{Name: "bonding_curve", Kind: layout.KindPubkey},
		layout.Field{Name: "user", Kind: layout.KindPubkey},
		layout.Field{Name: "creator", Kind: layout.KindPubkey, Trailing: true},
		layout.Field{Name: "timestamp", Kind: layout.KindI64, Trailing: true},
		layout.Field{Name: "virtual_token_reserves", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "virtual_sol_reserves", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "real_token_reserves", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "token_total_supply", Kind: layout.KindU64, Trailing: true},
	)

	tradeEventLayout = layout.NewStruct("TradeEvent",
		layout.Field{Name: "mint", Kind: layout.KindPubkey},
		layout.Field{Name: "sol_amount", Kind: layout.KindU64},
		layout.Field{Name: "token_amount", Kind: layout.KindU64},
		layout.Field{Name: "is_buy", Kind: layout.KindBool},
		layout.Field{Name: "user", Kind: layout.KindPubkey},
		layout.Field{Name: "timestamp", Kind: layout.KindI64},
		layout.Field{Name: "virtual_sol_reserves", Kind: layout.KindU64},
		layout.Field{Name: "virtual_token_reserves", Kind: layout.KindU64},
		layout.Field{Name: "real_sol_reserves", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "real_token_reserves", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "fee_recipient", Kind: layout.KindPubkey, Trailing: true},
		layout.Field{Name: "fee_basis_points", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "fee", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "creator", Kind: layout.KindPubkey, Trailing: true},
		layout.Field{Name: "creator_fee_basis_points", Kind: layout.KindU64, Trailing: true},
		layout.Field{Name: "creator_fee", Kind: layout.KindU64, Trailing: true},
	)

	completeEventLayout = layout.NewStruct("CompleteEvent",
		layout.Field{Name: "user", Kind: layout.KindPubkey},
		layout.Field{Name: "mint", Kind: layout.KindPubkey},
		layout.Field{Name: "bonding_curve", Kind: layout.KindPubkey},
		layout.Field{Name: "timestamp", Kind: layout.KindI64},
	)
)

func decodeCreateEvent(body []byte) (Event, error) {
	rec, _, err := createEventLayout.Decode(body, 0)
	if err != nil {
		return nil, err
	}
	return CreateEvent{
		Name:                 rec.String("name"),
		Symbol:               rec.String("symbol"),
		URI:                  rec.String("uri"),
		Mint:                 rec.Pubkey("mint"),
		BondingCurve:         rec.Pubkey("bonding_curve"),
		User:                 rec.Pubkey("user"),
		Creator:              rec.Pubkey("creator"),
		Timestamp:            rec.I64("timestamp"),
		VirtualTokenReserves: rec.U64("virtual_token_reserves"),
		VirtualSolReserves:   rec.U64("virtual_sol_reserves"),
		RealTokenReserves:    rec.U64("real_token_reserves"),
		TokenTotalSupply:     rec.U64("token_total_supply"),
	}, nil
}

func decodeTradeEvent(body []byte) (Event, error) {
	rec, _, err := tradeEventLayout.Decode(body, 0)
	if err != nil {
		return nil, err
	}
	return TradeEvent{
		Mint:                 rec.Pubkey("mint"),
		SolAmount:            rec.U64("sol_amount"),
		TokenAmount:          rec.U64("token_amount"),
		IsBuy:                rec.Bool("is_buy"),
		User:                 rec.Pubkey("user"),
		Timestamp:            rec.I64("timestamp"),
		VirtualSolReserves:   rec.U64("virtual_sol_reserves"),
		VirtualTokenReserves: rec.U64("virtual_token_reserves"),
		RealSolReserves:      rec.U64("real_sol_reserves"),
		RealTokenReserves:    rec.U64("real_token_reserves"),
		HasFee:               rec.Has("fee"),
		FeeRecipient:         rec.Pubkey("fee_recipient"),
		FeeBasisPoints:       rec.U64("fee_basis_points"),
		Fee:                  rec.U64("fee"),
		Creator:              rec.Pubkey("creator"),
		CreatorFeeBasisPoint: rec.U64("creator_fee_basis_points"),
		CreatorFee:           rec.U64("creator_fee"),
	}, nil
}

func decodeCompleteEvent(body []byte) (Event, error) {
	rec, _, err := completeEventLayout.Decode(body, 0)
	if err != nil {
		return nil, err
	}
	return CompleteEvent{
		User:         rec.Pubkey("user"),
		Mint:         rec.Pubkey("mint"),
		BondingCurve: rec.Pubkey("bonding_curve"),
		Timestamp:    rec.I64("timestamp"),
	}, nil
}

var eventRegistry = discriminator.New[Event]("pumpfun", discriminator.EventWidth,
	discriminator.Signature[Event]("event:CreateEvent", decodeCreateEvent),
	discriminator.Signature[Event]("event:TradeEvent", decodeTradeEvent),
	discriminator.Signature[Event]("event:CompleteEvent", decodeCompleteEvent),
)

// DecodeEvent 解码以 8 字节事件判别码开头的数据（自调用事件去掉前缀后的部分，或 "Program data:" 的内容）
func DecodeEvent(data []byte) (Event, error) {
	m, err := eventRegistry.Dispatch(data)
	if err != nil {
		return nil, err
	}
	if !m.Known {
		ev := UnknownEvent{Raw: data}
		if len(data) >= discriminator.EventWidth {
			ev.Discriminator = data[:discriminator.EventWidth]
		}
		return ev, nil
	}
	return m.Value, nil
}
