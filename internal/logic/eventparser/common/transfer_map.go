package common

import (
	"encoding/binary"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"

	"github.com/blocto/solana-go-sdk/program/system"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// 合约源代码:
// SplToken: https://github.com/solana-program/token/blob/main/program/src/instruction.rs
// Token2022: https://github.com/solana-program/token-2022

// TransferKind 资金流动类型
type TransferKind uint8

const (
	KindTransfer       TransferKind = iota + 1 // Transfer / TransferChecked
	KindMintTo                                 // MintTo / MintToChecked
	KindBurn                                   // Burn / BurnChecked
	KindSystemTransfer                         // System Program Transfer（原生 SOL）
)

// ParsedTransfer 一次 token / SOL 的资金流动。
// MintTo 没有来源账户，Burn 没有目标账户，对应字段为零值。
type ParsedTransfer struct {
	Kind            TransferKind
	Program         types.Pubkey // Token / Token2022 / System
	IxIndex         uint16       // 主指令
	InnerIndex      uint16       // 内部指令
	Position        int          // 在展平指令序列中的位置
	Token           types.Pubkey // Token mint 地址，原生 SOL 为 WSOL
	SrcAccount      types.Pubkey // 来源 TokenAccount
	DestAccount     types.Pubkey // 目标 TokenAccount
	SrcWallet       types.Pubkey // 来源账户所有者 / 签名权限
	DestWallet      types.Pubkey // 目标账户所有者
	Amount          uint64       // 转账数量（最小单位）
	Decimals        uint8        // Token 精度
	SrcPostBalance  uint64       // 来源账户转账后余额
	DestPostBalance uint64       // 目标账户转账后余额
}

// TransferKey 以发起转账的父指令定位一组转账
type TransferKey struct {
	ProgramID types.Pubkey
	Outer     uint16
	Inner     uint16
}

// KeyOf 返回指令作为父指令时的 key
func KeyOf(ix *core.AdaptedInstruction) TransferKey {
	return TransferKey{ProgramID: ix.ProgramID, Outer: ix.IxIndex, Inner: ix.InnerIndex}
}

// TransferData 父指令 → 按执行顺序排列的转账列表
type TransferData map[TransferKey][]*ParsedTransfer

// Of 返回 ix 直接发起的转账
func (d TransferData) Of(ix *core.AdaptedInstruction) []*ParsedTransfer {
	return d[KeyOf(ix)]
}

func isTokenProgram(p types.Pubkey) bool {
	return p == consts.TokenProgram || p == consts.TokenProgram2022
}

func isTransferProgram(p types.Pubkey) bool {
	return isTokenProgram(p) || p == consts.SystemProgram
}

func stackHeight(ix *core.AdaptedInstruction) uint32 {
	if !ix.IsInner() {
		return 1
	}
	return ix.StackHeight
}

// findParent 定位 inner 指令的父指令：
// 有 stack height 时取同一主指令内最近的上一层指令；
// 否则取最近的非转账类指令，找不到则归属主指令。
func findParent(instrs []*core.AdaptedInstruction, pos int) int {
	ix := instrs[pos]
	if !ix.IsInner() {
		return -1
	}
	if h := ix.StackHeight; h > 1 {
		for j := pos - 1; j >= 0 && instrs[j].IxIndex == ix.IxIndex; j-- {
			if stackHeight(instrs[j]) == h-1 {
				return j
			}
		}
	}
	for j := pos - 1; j >= 0 && instrs[j].IxIndex == ix.IxIndex; j-- {
		if !instrs[j].IsInner() || !isTransferProgram(instrs[j].ProgramID) {
			return j
		}
	}
	return -1
}

// BuildTransferData 一次遍历解码全部 inner 转账类指令，按父指令归组
func BuildTransferData(ctx *ParserContext, instrs []*core.AdaptedInstruction) TransferData {
	data := make(TransferData)
	for i, ix := range instrs {
		if !ix.IsInner() || !isTransferProgram(ix.ProgramID) {
			continue
		}
		pt, ok := ParseTransferLike(ctx, ix)
		if !ok {
			continue
		}
		parent := findParent(instrs, i)
		if parent < 0 {
			continue
		}
		key := KeyOf(instrs[parent])
		data[key] = append(data[key], pt)
	}
	return data
}

// ParseTransferLike 解码 Transfer / MintTo / Burn / System Transfer，其余指令返回 false
func ParseTransferLike(ctx *ParserContext, ix *core.AdaptedInstruction) (*ParsedTransfer, bool) {
	if ix.ProgramID == consts.SystemProgram {
		return ParseSystemTransfer(ix)
	}
	if len(ix.Data) == 0 || !isTokenProgram(ix.ProgramID) {
		return nil, false
	}
	switch ix.Data[0] {
	case byte(sdktoken.InstructionTransfer), byte(sdktoken.InstructionTransferChecked):
		return ParseTransferInstruction(ctx, ix)
	case byte(sdktoken.InstructionMintTo), byte(sdktoken.InstructionMintToChecked):
		return ParseMintToInstruction(ctx, ix)
	case byte(sdktoken.InstructionBurn), byte(sdktoken.InstructionBurnChecked):
		return ParseBurnInstruction(ctx, ix)
	}
	return nil, false
}

func newTransfer(kind TransferKind, ix *core.AdaptedInstruction) *ParsedTransfer {
	return &ParsedTransfer{
		Kind:       kind,
		Program:    ix.ProgramID,
		IxIndex:    ix.IxIndex,
		InnerIndex: ix.InnerIndex,
		Position:   ix.Position,
	}
}

// ParseTransferInstruction 解析 Transfer / TransferChecked 指令
func ParseTransferInstruction(ctx *ParserContext, ix *core.AdaptedInstruction) (*ParsedTransfer, bool) {
	if len(ix.Data) < 9 || len(ix.Accounts) < 3 {
		return nil, false
	}

	var src, dest, authority types.Pubkey
	switch ix.Data[0] {
	// Transfer: [0]=instr, [1:9]=amount
	// accounts = [src_account, dest_account, authority_wallet]
	case byte(sdktoken.InstructionTransfer):
		src, dest, authority = ix.Accounts[0], ix.Accounts[1], ix.Accounts[2]

	// TransferChecked: [0]=instr, [1:9]=amount, [9]=decimals
	// accounts = [src_account, mint, dest_account, authority_wallet]
	case byte(sdktoken.InstructionTransferChecked):
		if len(ix.Data) < 10 || len(ix.Accounts) < 4 {
			return nil, false
		}
		src, dest, authority = ix.Accounts[0], ix.Accounts[2], ix.Accounts[3]
	default:
		return nil, false
	}

	srcInfo, ok1 := ctx.Balances[src]
	destInfo, ok2 := ctx.Balances[dest]
	if !ok1 && !ok2 {
		logger.Errorf("[Token:Transfer] balance missing src=%s dest=%s tx=%s", src, dest, ctx.TxHashString())
		return nil, false
	}

	pt := newTransfer(KindTransfer, ix)
	pt.SrcAccount = src
	pt.DestAccount = dest
	pt.SrcWallet = authority
	pt.Amount = binary.LittleEndian.Uint64(ix.Data[1:9])
	if ok1 {
		pt.Token = srcInfo.Token
		pt.Decimals = srcInfo.Decimals
		pt.SrcPostBalance = srcInfo.PostBalance
	}
	if ok2 {
		pt.Token = destInfo.Token
		pt.Decimals = destInfo.Decimals
		pt.DestWallet = destInfo.PostOwner
		pt.DestPostBalance = destInfo.PostBalance
	}
	if ix.Data[0] == byte(sdktoken.InstructionTransferChecked) {
		if pt.Token != ix.Accounts[1] {
			logger.Warnf("[Token:TransferChecked] mint mismatch, balance.token=%s, ix.mint=%s tx=%s",
				pt.Token, ix.Accounts[1], ctx.TxHashString())
		}
		pt.Decimals = ix.Data[9]
	}
	return pt, true
}

// ParseMintToInstruction 解析 MintTo / MintToChecked 指令
func ParseMintToInstruction(ctx *ParserContext, ix *core.AdaptedInstruction) (*ParsedTransfer, bool) {
	// MintTo: [0]=instr, [1:9]=amount, [9]=decimals (仅 MintToChecked 有)
	// accounts = [mint, dest_token_account, authority_wallet]
	if len(ix.Data) < 9 || len(ix.Accounts) < 3 {
		return nil, false
	}
	pt := newTransfer(KindMintTo, ix)
	// Accounts[0] 更贴近指令定义，因此 mintTo 以 Accounts[0] 为准，而不是 balance 中的 token
	pt.Token = ix.Accounts[0]
	pt.DestAccount = ix.Accounts[1]
	pt.SrcWallet = ix.Accounts[2]
	pt.Amount = binary.LittleEndian.Uint64(ix.Data[1:9])
	if info, ok := ctx.Balances[pt.DestAccount]; ok {
		pt.Decimals = info.Decimals
		pt.DestWallet = info.PostOwner
		pt.DestPostBalance = info.PostBalance
	} else if len(ix.Data) >= 10 {
		pt.Decimals = ix.Data[9]
	}
	return pt, true
}

// ParseBurnInstruction 解析 Burn / BurnChecked 指令
func ParseBurnInstruction(ctx *ParserContext, ix *core.AdaptedInstruction) (*ParsedTransfer, bool) {
	// Burn: [0]=instr, [1:9]=amount, [9]=decimals (仅 BurnChecked 有)
	// accounts = [src_token_account, mint, authority_wallet]
	if len(ix.Data) < 9 || len(ix.Accounts) < 3 {
		return nil, false
	}
	pt := newTransfer(KindBurn, ix)
	pt.Token = ix.Accounts[1]
	pt.SrcAccount = ix.Accounts[0]
	pt.SrcWallet = ix.Accounts[2]
	pt.Amount = binary.LittleEndian.Uint64(ix.Data[1:9])
	if info, ok := ctx.Balances[pt.SrcAccount]; ok {
		pt.Decimals = info.Decimals
		pt.SrcPostBalance = info.PostBalance
	} else if len(ix.Data) >= 10 {
		pt.Decimals = ix.Data[9]
	}
	return pt, true
}

// ParseSystemTransfer 解析 System Program Transfer：[0:4]=u32 tag, [4:12]=lamports；accounts = [from, to]
func ParseSystemTransfer(ix *core.AdaptedInstruction) (*ParsedTransfer, bool) {
	if len(ix.Data) < 12 || len(ix.Accounts) < 2 {
		return nil, false
	}
	if binary.LittleEndian.Uint32(ix.Data[:4]) != uint32(system.InstructionTransfer) {
		return nil, false
	}
	pt := newTransfer(KindSystemTransfer, ix)
	pt.Token = consts.WSOLMint
	pt.Decimals = consts.SOLDecimals
	pt.SrcAccount = ix.Accounts[0]
	pt.DestAccount = ix.Accounts[1]
	pt.SrcWallet = ix.Accounts[0]
	pt.DestWallet = ix.Accounts[1]
	pt.Amount = binary.LittleEndian.Uint64(ix.Data[4:12])
	return pt, true
}
