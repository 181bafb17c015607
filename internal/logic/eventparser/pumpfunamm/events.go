package pumpfunamm

import (
	"fmt"

	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/types"

	"github.com/near/borsh-go"
)

// Event Pump AMM 的事件：BuyEvent / SellEvent / UnknownEvent
type Event interface {
	isEvent()
}

// BuyEvent 对应链上 BuyEvent。HasCoinCreator=false 表示创作者分成上线前的旧版事件
type BuyEvent struct {
	Timestamp                        int64
	BaseAmountOut                    uint64
	MaxQuoteAmountIn                 uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountIn                    uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountInWithLpFee           uint64
	UserQuoteAmountIn                uint64
	Pool                             types.Pubkey
	User                             types.Pubkey
	UserBaseTokenAccount             types.Pubkey
	UserQuoteTokenAccount            types.Pubkey
	ProtocolFeeRecipient             types.Pubkey
	ProtocolFeeRecipientTokenAccount types.Pubkey
	CoinCreator                      types.Pubkey
	CoinCreatorFeeBasisPoints        uint64
	CoinCreatorFee                   uint64
	HasCoinCreator                   bool `borsh_skip:"true"`
}

// SellEvent 对应链上 SellEvent
type SellEvent struct {
	Timestamp                        int64
	BaseAmountIn                     uint64
	MinQuoteAmountOut                uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmountOut                   uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountOutWithoutLpFee       uint64
	UserQuoteAmountOut               uint64
	Pool                             types.Pubkey
	User                             types.Pubkey
	UserBaseTokenAccount             types.Pubkey
	UserQuoteTokenAccount            types.Pubkey
	ProtocolFeeRecipient             types.Pubkey
	ProtocolFeeRecipientTokenAccount types.Pubkey
	CoinCreator                      types.Pubkey
	CoinCreatorFeeBasisPoints        uint64
	CoinCreatorFee                   uint64
	HasCoinCreator                   bool `borsh_skip:"true"`
}

type UnknownEvent struct {
	Discriminator []byte
	Raw           []byte
}

func (BuyEvent) isEvent()     {}
func (SellEvent) isEvent()    {}
func (UnknownEvent) isEvent() {}

// legacySwapEvent 旧版事件到 ProtocolFeeRecipientTokenAccount 为止，买卖两侧字段宽度一致
type legacySwapEvent struct {
	Timestamp                        int64
	BaseAmount                       uint64
	QuoteLimit                       uint64
	UserBaseTokenReserves            uint64
	UserQuoteTokenReserves           uint64
	PoolBaseTokenReserves            uint64
	PoolQuoteTokenReserves           uint64
	QuoteAmount                      uint64
	LpFeeBasisPoints                 uint64
	LpFee                            uint64
	ProtocolFeeBasisPoints           uint64
	ProtocolFee                      uint64
	QuoteAmountLpAdjusted            uint64
	UserQuoteAmount                  uint64
	Pool                             types.Pubkey
	User                             types.Pubkey
	UserBaseTokenAccount             types.Pubkey
	UserQuoteTokenAccount            types.Pubkey
	ProtocolFeeRecipient             types.Pubkey
	ProtocolFeeRecipientTokenAccount types.Pubkey
}

const (
	legacyEventSize = 14*8 + 6*32
	// fullEventSize 含创作者分成字段的事件体长度
	fullEventSize = legacyEventSize + 32 + 2*8
)

// checkEventSize borsh-go 读取不足时不区分截断，这里先按长度判定
func checkEventSize(body []byte) error {
	if len(body) < legacyEventSize {
		return fmt.Errorf("swap event: need %d bytes, have %d: %w", legacyEventSize, len(body), layout.ErrTruncatedPayload)
	}
	return nil
}

func decodeBuyEvent(body []byte) (Event, error) {
	if err := checkEventSize(body); err != nil {
		return nil, err
	}
	if len(body) >= fullEventSize {
		var ev BuyEvent
		if err := borsh.Deserialize(&ev, body); err != nil {
			return nil, err
		}
		ev.HasCoinCreator = true
		return ev, nil
	}
	var legacy legacySwapEvent
	if err := borsh.Deserialize(&legacy, body); err != nil {
		return nil, err
	}
	return BuyEvent{
		Timestamp:                        legacy.Timestamp,
		BaseAmountOut:                    legacy.BaseAmount,
		MaxQuoteAmountIn:                 legacy.QuoteLimit,
		UserBaseTokenReserves:            legacy.UserBaseTokenReserves,
		UserQuoteTokenReserves:           legacy.UserQuoteTokenReserves,
		PoolBaseTokenReserves:            legacy.PoolBaseTokenReserves,
		PoolQuoteTokenReserves:           legacy.PoolQuoteTokenReserves,
		QuoteAmountIn:                    legacy.QuoteAmount,
		LpFeeBasisPoints:                 legacy.LpFeeBasisPoints,
		LpFee:                            legacy.LpFee,
		ProtocolFeeBasisPoints:           legacy.ProtocolFeeBasisPoints,
		ProtocolFee:                      legacy.ProtocolFee,
		QuoteAmountInWithLpFee:           legacy.QuoteAmountLpAdjusted,
		UserQuoteAmountIn:                legacy.UserQuoteAmount,
		Pool:                             legacy.Pool,
		User:                             legacy.User,
		UserBaseTokenAccount:             legacy.UserBaseTokenAccount,
		UserQuoteTokenAccount:            legacy.UserQuoteTokenAccount,
		ProtocolFeeRecipient:             legacy.ProtocolFeeRecipient,
		ProtocolFeeRecipientTokenAccount: legacy.ProtocolFeeRecipientTokenAccount,
	}, nil
}

func decodeSellEvent(body []byte) (Event, error) {
	if err := checkEventSize(body); err != nil {
		return nil, err
	}
	if len(body) >= fullEventSize {
		var ev SellEvent
		if err := borsh.Deserialize(&ev, body); err != nil {
			return nil, err
		}
		ev.HasCoinCreator = true
		return ev, nil
	}
	var legacy legacySwapEvent
	if err := borsh.Deserialize(&legacy, body); err != nil {
		return nil, err
	}
	return SellEvent{
		Timestamp:                        legacy.Timestamp,
		BaseAmountIn:                     legacy.BaseAmount,
		MinQuoteAmountOut:                legacy.QuoteLimit,
		UserBaseTokenReserves:            legacy.UserBaseTokenReserves,
		UserQuoteTokenReserves:           legacy.UserQuoteTokenReserves,
		PoolBaseTokenReserves:            legacy.PoolBaseTokenReserves,
		PoolQuoteTokenReserves:           legacy.PoolQuoteTokenReserves,
		QuoteAmountOut:                   legacy.QuoteAmount,
		LpFeeBasisPoints:                 legacy.LpFeeBasisPoints,
		LpFee:                            legacy.LpFee,
		ProtocolFeeBasisPoints:           legacy.ProtocolFeeBasisPoints,
		ProtocolFee:                      legacy.ProtocolFee,
		QuoteAmountOutWithoutLpFee:       legacy.QuoteAmountLpAdjusted,
		UserQuoteAmountOut:               legacy.UserQuoteAmount,
		Pool:                             legacy.Pool,
		User:                             legacy.User,
		UserBaseTokenAccount:             legacy.UserBaseTokenAccount,
		UserQuoteTokenAccount:            legacy.UserQuoteTokenAccount,
		ProtocolFeeRecipient:             legacy.ProtocolFeeRecipient,
		ProtocolFeeRecipientTokenAccount: legacy.ProtocolFeeRecipientTokenAccount,
	}, nil
}

var eventRegistry = discriminator.New[Event]("pumpfunamm", discriminator.EventWidth,
	discriminator.Signature[Event]("event:BuyEvent", decodeBuyEvent),
	discriminator.Signature[Event]("event:SellEvent", decodeSellEvent),
)

// DecodeEvent 解码以 8 字节事件判别码开头的数据
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
