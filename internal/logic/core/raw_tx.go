package core

import "dex-parser-sol/internal/types"

// RawAccount message.accountKeys 中的一个静态账户
type RawAccount struct {
	Pubkey   types.Pubkey
	Signer   bool
	Writable bool
}

// RawInstruction 主指令，账户与 program 均以下标引用完整账户列表
type RawInstruction struct {
	ProgramIDIndex uint32
	Accounts       []uint32
	Data           []byte
}

// RawInnerInstruction CPI 指令；StackHeight 为 0 表示来源未提供
type RawInnerInstruction struct {
	ProgramIDIndex uint32
	Accounts       []uint32
	Data           []byte
	StackHeight    uint32
}

// RawInnerGroup 归属于某条主指令（Index）的 inner 指令组
type RawInnerGroup struct {
	Index        uint32
	Instructions []RawInnerInstruction
}

// RawTokenBalance pre/post token 余额条目，mint / owner 保持来源的 base58 形式
type RawTokenBalance struct {
	AccountIndex uint32
	Mint         string
	Owner        string
	ProgramID    string
	Amount       uint64
	Decimals     uint8
}

// RawTransaction 解析输入：由外部数据源（gRPC / RPC / 回放文件）构造，解析过程中只读。
// 账户空间 = AccountKeys ++ LoadedWritable ++ LoadedReadonly。
type RawTransaction struct {
	Slot      uint64
	BlockTime int64
	BlockHash types.Hash
	TxIndex   uint32
	Signature []byte

	AccountKeys    []RawAccount
	LoadedWritable []types.Pubkey
	LoadedReadonly []types.Pubkey

	Instructions []RawInstruction
	InnerGroups  []RawInnerGroup

	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []RawTokenBalance
	PostTokenBalances []RawTokenBalance

	LogMessages []string
	Failed      bool

	Warnings []ParseWarning // 来源转换阶段发现的非致命问题，会并入解析结果
}

// AccountCount 完整账户空间大小
func (tx *RawTransaction) AccountCount() int {
	return len(tx.AccountKeys) + len(tx.LoadedWritable) + len(tx.LoadedReadonly)
}
