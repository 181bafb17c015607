// Package testkit 构造测试用的原始交易，供各解析包的单元测试共享。
package testkit

import (
	"encoding/binary"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/types"
)

// Key 生成确定性的测试地址
func Key(seed byte) types.Pubkey {
	var pk types.Pubkey
	for i := range pk {
		pk[i] = seed
	}
	pk[31] = 0xA5
	return pk
}

// Sig 生成确定性的 64 字节签名
func Sig(seed byte) []byte {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = seed
	}
	return sig
}

// TxBuilder 以 Pubkey 的方式拼装 RawTransaction，下标自动分配
type TxBuilder struct {
	raw   *core.RawTransaction
	index map[types.Pubkey]uint32
}

// NewTx 以 signer 作为 0 号账户创建交易
func NewTx(signer types.Pubkey) *TxBuilder {
	b := &TxBuilder{
		raw: &core.RawTransaction{
			Slot:      300_000_000,
			BlockTime: 1_720_000_000,
			Signature: Sig(7),
		},
		index: make(map[types.Pubkey]uint32),
	}
	b.raw.AccountKeys = append(b.raw.AccountKeys, core.RawAccount{Pubkey: signer, Signer: true, Writable: true})
	b.index[signer] = 0
	return b
}

// Key 返回账户下标，不存在则追加为静态可写账户
func (b *TxBuilder) Key(pk types.Pubkey) uint32 {
	if idx, ok := b.index[pk]; ok {
		return idx
	}
	idx := uint32(len(b.raw.AccountKeys))
	b.raw.AccountKeys = append(b.raw.AccountKeys, core.RawAccount{Pubkey: pk, Writable: true})
	b.index[pk] = idx
	return idx
}

func (b *TxBuilder) keys(accounts []types.Pubkey) []uint32 {
	out := make([]uint32, len(accounts))
	for i, pk := range accounts {
		out[i] = b.Key(pk)
	}
	return out
}

// Ix 追加主指令，返回其下标
func (b *TxBuilder) Ix(program types.Pubkey, data []byte, accounts ...types.Pubkey) uint32 {
	b.raw.Instructions = append(b.raw.Instructions, core.RawInstruction{
		ProgramIDIndex: b.Key(program),
		Accounts:       b.keys(accounts),
		Data:           data,
	})
	return uint32(len(b.raw.Instructions) - 1)
}

// Inner 为主指令 outer 追加一条 CPI 指令（stack height 2）
func (b *TxBuilder) Inner(outer uint32, program types.Pubkey, data []byte, accounts ...types.Pubkey) *TxBuilder {
	inner := core.RawInnerInstruction{
		ProgramIDIndex: b.Key(program),
		Accounts:       b.keys(accounts),
		Data:           data,
		StackHeight:    2,
	}
	groups := b.raw.InnerGroups
	if n := len(groups); n > 0 && groups[n-1].Index == outer {
		groups[n-1].Instructions = append(groups[n-1].Instructions, inner)
	} else {
		b.raw.InnerGroups = append(groups, core.RawInnerGroup{Index: outer, Instructions: []core.RawInnerInstruction{inner}})
	}
	return b
}

// TokenAccount 登记一个 token 账户的 pre/post 余额
func (b *TxBuilder) TokenAccount(account, mint, owner types.Pubkey, decimals uint8, pre, post uint64) *TxBuilder {
	idx := b.Key(account)
	entry := core.RawTokenBalance{
		AccountIndex: idx,
		Mint:         mint.String(),
		Owner:        owner.String(),
		Decimals:     decimals,
	}
	preEntry, postEntry := entry, entry
	preEntry.Amount = pre
	postEntry.Amount = post
	b.raw.PreTokenBalances = append(b.raw.PreTokenBalances, preEntry)
	b.raw.PostTokenBalances = append(b.raw.PostTokenBalances, postEntry)
	return b
}

// Lamports 登记原生 SOL 余额
func (b *TxBuilder) Lamports(account types.Pubkey, pre, post uint64) *TxBuilder {
	idx := int(b.Key(account))
	for len(b.raw.PreBalances) <= idx {
		b.raw.PreBalances = append(b.raw.PreBalances, 0)
		b.raw.PostBalances = append(b.raw.PostBalances, 0)
	}
	b.raw.PreBalances[idx] = pre
	b.raw.PostBalances[idx] = post
	return b
}

// Logs 追加程序日志
func (b *TxBuilder) Logs(lines ...string) *TxBuilder {
	b.raw.LogMessages = append(b.raw.LogMessages, lines...)
	return b
}

// Raw 返回构造结果
func (b *TxBuilder) Raw() *core.RawTransaction {
	return b.raw
}

// TransferData SPL Token Transfer（tag 3）
func TransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// TransferCheckedData SPL Token TransferChecked（tag 12）
func TransferCheckedData(amount uint64, decimals uint8) []byte {
	data := make([]byte, 10)
	data[0] = 12
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals
	return data
}

// MintToData SPL Token MintTo（tag 7）
func MintToData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 7
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// BurnData SPL Token Burn（tag 8）
func BurnData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 8
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// SystemTransferData System Program Transfer（u32 tag 2）
func SystemTransferData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data, 2)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return data
}
