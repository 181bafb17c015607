package core

import (
	"fmt"
	"strconv"

	"dex-parser-sol/internal/types"
)

// TxContext 表示交易所属区块的上下文信息。
type TxContext struct {
	BlockTime   int64      // 区块时间戳（Unix 秒）
	Slot        uint64     // 当前 Slot（Solana 高度单位）
	ParentSlot  uint64     // 父 Slot（用于分叉检测和回滚）
	BlockHeight uint64     // 区块高度（辅助比对）
	BlockHash   types.Hash // 区块哈希（辅助去重与 fork 检测）
}

// AccountMeta 完整账户空间中的一个账户（静态 + ALT 加载）
type AccountMeta struct {
	Pubkey   types.Pubkey
	Signer   bool
	Writable bool
}

// AdaptedInstruction 表示一条主指令或 inner 指令。
// 适配阶段只填充 ProgramID / Accounts / Data / IxIndex；InnerIndex 与 Position 由 classifier 在排序后写入。
type AdaptedInstruction struct {
	IxIndex     uint16         // 主指令索引（从 0 开始）
	InnerIndex  uint16         // Inner 指令在主指令中的序号，主指令本身为 0，CPI 调用从 1 开始
	StackHeight uint32         // 调用深度，主指令为 1，来源未提供时为 0
	Position    int            // 在展平后指令序列中的位置
	ProgramID   types.Pubkey   // 指令对应的程序 ID
	Accounts    []types.Pubkey // 指令涉及的账户列表，保持原始顺序
	Data        []byte         // 指令原始数据，用于 handler 判断指令类型与解析参数
}

// IsInner 是否为 CPI 指令
func (ix *AdaptedInstruction) IsInner() bool {
	return ix.InnerIndex != 0
}

// Idx 输出排序用的位置标识："outer" 或 "outer-inner"（inner 从 0 起计）
func (ix *AdaptedInstruction) Idx() string {
	if ix.InnerIndex == 0 {
		return strconv.Itoa(int(ix.IxIndex))
	}
	return strconv.Itoa(int(ix.IxIndex)) + "-" + strconv.Itoa(int(ix.InnerIndex)-1)
}

// AdaptedInnerGroup 适配后的 inner 指令组，顺序与来源一致（未必按 Index 排序）
type AdaptedInnerGroup struct {
	Index        uint32
	Instructions []*AdaptedInstruction
}

// SolBalance 记录某账户在交易中 SOL 余额的变动快照（含执行前后余额）。
type SolBalance struct {
	AccountIndex uint32
	PreBalance   uint64 // 交易执行前余额（lamports）
	PostBalance  uint64 // 交易执行后余额
	Account      types.Pubkey
}

// TokenBalance 表示某个 SPL Token 账户在交易执行前后的余额信息。
type TokenBalance struct {
	Decimals       uint8
	HasPreOwner    bool
	AccountIndex   uint32
	PreBalance     uint64 // 交易执行前余额（最小单位）
	PostBalance    uint64 // 交易执行后余额
	TokenAccount   types.Pubkey
	Token          types.Pubkey
	PreOwner       types.Pubkey
	PostOwner      types.Pubkey
	TokenProgramID types.Pubkey
}

// TokenDecimals 表示某 mint 的精度信息（通常用于解析金额）。
type TokenDecimals struct {
	Token    types.Pubkey
	Decimals uint8
}

// AdaptedTx 统一的交易视图，是事件解析流程的核心输入结构体。
type AdaptedTx struct {
	TxCtx     *TxContext     // 所属区块上下文
	TxIndex   uint32         // 当前交易在区块中的序号
	Signature []byte         // 交易签名（64 字节原始数据）
	Signers   []types.Pubkey // 交易签名者列表

	// Accounts 完整账户空间：静态账户 + ALT writable + ALT readonly
	Accounts []AccountMeta

	// TopLevel / InnerGroups 为来源中的原始指令集合（已解析为 Pubkey），彼此之间未排序
	TopLevel    []*AdaptedInstruction
	InnerGroups []AdaptedInnerGroup

	// Instructions 按链上执行顺序展平后的指令序列，由 classifier 生成
	Instructions []*AdaptedInstruction

	// LogMessages 交易执行过程中产生的 Program 日志
	LogMessages []string

	// SolBalances 记录交易中涉及的账户 SOL 余额快照（交易前后余额）。
	SolBalances map[types.Pubkey]*SolBalance

	// Balances 记录交易中涉及的 SPL Token 账户余额快照（交易前后余额）。
	Balances map[types.Pubkey]*TokenBalance

	// TokenDecimals 表示本交易中涉及的 mint → decimals 精度映射。
	// 单笔交易涉及的 mint 数量极少，切片顺序查找比 map 更快。
	TokenDecimals []TokenDecimals
}

// Account 按下标读取账户
func (tx *AdaptedTx) Account(index int) (AccountMeta, error) {
	if index < 0 || index >= len(tx.Accounts) {
		return AccountMeta{}, fmt.Errorf("%w: index %d, accounts %d", ErrAccountIndexOutOfRange, index, len(tx.Accounts))
	}
	return tx.Accounts[index], nil
}

// SolBalanceAt 按账户下标读取原生余额
func (tx *AdaptedTx) SolBalanceAt(index int) (*SolBalance, bool) {
	if index < 0 || index >= len(tx.Accounts) {
		return nil, false
	}
	b, ok := tx.SolBalances[tx.Accounts[index].Pubkey]
	return b, ok
}

// TokenBalanceAt 按账户下标读取 token 余额
func (tx *AdaptedTx) TokenBalanceAt(index int) (*TokenBalance, bool) {
	if index < 0 || index >= len(tx.Accounts) {
		return nil, false
	}
	b, ok := tx.Balances[tx.Accounts[index].Pubkey]
	return b, ok
}

func (tx *AdaptedTx) GetDecimalsByMint(mint types.Pubkey) (uint8, bool) {
	for _, v := range tx.TokenDecimals {
		if v.Token == mint {
			return v.Decimals, true
		}
	}
	return 0, false
}

// AddTokenDecimals 添加一个 mint 和 decimals，重复则跳过
func (tx *AdaptedTx) AddTokenDecimals(mint types.Pubkey, decimals uint8) {
	for _, v := range tx.TokenDecimals {
		if v.Token == mint {
			return
		}
	}
	tx.TokenDecimals = append(tx.TokenDecimals, TokenDecimals{
		Token:    mint,
		Decimals: decimals,
	})
}

// InstructionCount 主指令 + 所有 inner 指令总数
func (tx *AdaptedTx) InstructionCount() int {
	n := len(tx.TopLevel)
	for _, g := range tx.InnerGroups {
		n += len(g.Instructions)
	}
	return n
}

func (tx *AdaptedTx) SignatureString() string {
	return types.Signature(tx.Signature).String()
}
