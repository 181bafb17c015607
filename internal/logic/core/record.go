package core

import (
	"dex-parser-sol/internal/tools"
	"dex-parser-sol/internal/types"
)

// TradeType 交易方向
type TradeType string

const (
	TradeBuy  TradeType = "BUY"  // 用 quote 买入 base
	TradeSell TradeType = "SELL" // 卖出 base 换回 quote
	TradeSwap TradeType = "SWAP" // 双方都不是已知 quote，无法判定买卖
)

// TokenAmount 代币数量描述；AmountRaw 为无符号整数的精确十进制串，Amount 为按精度缩放后的十进制串
type TokenAmount struct {
	Mint      types.Pubkey `json:"mint"`
	AmountRaw string       `json:"amountRaw"`
	Amount    string       `json:"amount"`
	Decimals  uint8        `json:"decimals"`
}

// NewTokenAmount 由原始整数构造，保证 AmountRaw 与 Amount 一致
func NewTokenAmount(mint types.Pubkey, raw uint64, decimals uint8) TokenAmount {
	return TokenAmount{
		Mint:      mint,
		AmountRaw: tools.FormatRaw(raw),
		Amount:    tools.FormatAmount(raw, decimals),
		Decimals:  decimals,
	}
}

// FeeKind 手续费类别
type FeeKind string

const (
	FeeProtocol FeeKind = "protocol"
	FeeCreator  FeeKind = "creator"
	FeeLP       FeeKind = "lp"
	FeeTotal    FeeKind = "total"
)

// FeeInfo 单项手续费；Recipient 为空表示来源未给出接收方
type FeeInfo struct {
	Kind      FeeKind      `json:"kind"`
	Mint      types.Pubkey `json:"mint"`
	AmountRaw string       `json:"amountRaw"`
	Amount    string       `json:"amount"`
	Decimals  uint8        `json:"decimals"`
	Recipient string       `json:"recipient,omitempty"`
}

// TradeInfo 标准化交易记录，一次识别出的成交对应一条，构造后不再修改
type TradeInfo struct {
	Type        TradeType    `json:"type"`
	Pool        types.Pubkey `json:"pool"`
	InputToken  TokenAmount  `json:"inputToken"`
	OutputToken TokenAmount  `json:"outputToken"`
	Fee         *FeeInfo     `json:"fee,omitempty"`  // 各分项之和
	Fees        []FeeInfo    `json:"fees,omitempty"` // 非零分项
	User        types.Pubkey `json:"user"`
	ProgramID   types.Pubkey `json:"programId"`
	AMM         string       `json:"amm,omitempty"`
	Route       string       `json:"route,omitempty"`
	Slot        uint64       `json:"slot"`
	Timestamp   int64        `json:"timestamp"`
	Signature   string       `json:"signature"`
	Idx         string       `json:"idx"`
}

// BaseMint 买入时 base 为输出侧，卖出时为输入侧；SWAP 以输入侧为准
func (t *TradeInfo) BaseMint() types.Pubkey {
	if t.Type == TradeBuy {
		return t.OutputToken.Mint
	}
	return t.InputToken.Mint
}

// PoolEventType 流动性池动作
type PoolEventType string

const (
	PoolCreate   PoolEventType = "CREATE"
	PoolAdd      PoolEventType = "ADD"
	PoolRemove   PoolEventType = "REMOVE"
	PoolComplete PoolEventType = "COMPLETE" // 联合曲线完成 / 迁移
)

// PoolAccountIndex 关键账户在指令账户列表中的下标，-1 表示该动作不涉及
type PoolAccountIndex struct {
	Pool       int `json:"pool"`
	LpMint     int `json:"lpMint"`
	Token0Mint int `json:"token0Mint"`
	Token1Mint int `json:"token1Mint"`
	PoolToken0 int `json:"poolToken0"`
	PoolToken1 int `json:"poolToken1"`
	UserToken0 int `json:"userToken0"`
	UserToken1 int `json:"userToken1"`
	UserLp     int `json:"userLp"`
	User       int `json:"user"`
}

// NoAccountIndex 全部为 -1 的下标表
func NoAccountIndex() PoolAccountIndex {
	return PoolAccountIndex{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
}

// PoolEvent 标准化流动性池事件
type PoolEvent struct {
	Type        PoolEventType    `json:"type"`
	Pool        types.Pubkey     `json:"pool"`
	LpMint      types.Pubkey     `json:"lpMint"`
	User        types.Pubkey     `json:"user"`
	Token0Mint  types.Pubkey     `json:"token0Mint"`
	Token1Mint  types.Pubkey     `json:"token1Mint"`
	Token0      *TokenAmount     `json:"token0,omitempty"`
	Token1      *TokenAmount     `json:"token1,omitempty"`
	LpAmountRaw string           `json:"lpAmountRaw,omitempty"`
	Accounts    PoolAccountIndex `json:"accounts"`
	ProgramID   types.Pubkey     `json:"programId"`
	AMM         string           `json:"amm,omitempty"`
	Slot        uint64           `json:"slot"`
	Timestamp   int64            `json:"timestamp"`
	Signature   string           `json:"signature"`
	Idx         string           `json:"idx"`
}

// UnknownInstruction 未注册判别码的指令，作为显式的终态分类输出
type UnknownInstruction struct {
	ProgramID types.Pubkey `json:"programId"`
	Idx       string       `json:"idx"`
	Data      []byte       `json:"data"`
}

// WarningKind 非致命解析问题类别
type WarningKind string

const (
	WarnTruncatedPayload WarningKind = "TruncatedPayload"
	WarnInvalidEncoding  WarningKind = "InvalidEncoding"
	WarnMissingTransfer  WarningKind = "MissingTransfer"
	WarnHandlerPanic     WarningKind = "HandlerPanic"
)

// ParseWarning 单条记录被跳过时的结构化信号
type ParseWarning struct {
	Kind      WarningKind  `json:"kind"`
	ProgramID types.Pubkey `json:"programId"`
	Idx       string       `json:"idx"`
	Message   string       `json:"message"`
}
