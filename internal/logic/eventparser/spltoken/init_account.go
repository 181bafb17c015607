// Package spltoken 从 Token Program 的 InitializeAccount 指令中补全交易余额表缺失的 token 账户。
package spltoken

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// FillInitAccountBalances 扫描 InitializeAccount / 2 / 3 指令，为余额表中缺失的 TokenAccount 补全 mint 与 owner。
// 交易内创建又关闭的临时账户（如 WSOL 包装账户）不会出现在 pre/post 余额中，转账解码依赖这里的补全。
// 返回补全的账户数。
func FillInitAccountBalances(tx *core.AdaptedTx, instrs []*core.AdaptedInstruction) int {
	filled := 0
	for _, ix := range instrs {
		if ix.ProgramID != consts.TokenProgram && ix.ProgramID != consts.TokenProgram2022 {
			continue
		}
		if tryFillBalanceFromInitAccount(tx, ix) {
			filled++
		}
	}
	return filled
}

// tryFillBalanceFromInitAccount 仅当 tx.Balances 中尚未包含该 TokenAccount 时生效
func tryFillBalanceFromInitAccount(tx *core.AdaptedTx, ix *core.AdaptedInstruction) bool {
	if len(ix.Data) == 0 {
		return false
	}

	var mint, tokenAccount, owner types.Pubkey
	switch ix.Data[0] {
	case byte(sdktoken.InstructionInitializeAccount):
		// Layout: [tokenAccount, mint, owner]
		if len(ix.Accounts) < 3 {
			return false
		}
		tokenAccount = ix.Accounts[0]
		mint = ix.Accounts[1]
		owner = ix.Accounts[2]

	case byte(sdktoken.InstructionInitializeAccount2), byte(sdktoken.InstructionInitializeAccount3):
		// Layout: [tokenAccount, mint]，owner 位于 Data[1:33]
		if len(ix.Accounts) < 2 || len(ix.Data) < 33 {
			return false
		}
		tokenAccount = ix.Accounts[0]
		mint = ix.Accounts[1]
		var ok bool
		if owner, ok = types.PubkeyFromBytes(ix.Data[1:33]); !ok {
			return false
		}

	default:
		return false
	}

	if _, found := tx.Balances[tokenAccount]; found {
		return false
	}
	decimals, ok := tx.GetDecimalsByMint(mint)
	if !ok {
		logger.Warnf("[spltoken:InitAccount] mint 精度缺失: mint=%s, tokenAccount=%s, idx=%s, tx=%s",
			mint, tokenAccount, ix.Idx(), tx.SignatureString())
		return false
	}
	if tx.Balances == nil {
		tx.Balances = make(map[types.Pubkey]*core.TokenBalance)
	}
	tx.Balances[tokenAccount] = &core.TokenBalance{
		TokenAccount:   tokenAccount,
		Token:          mint,
		PreOwner:       owner,
		PostOwner:      owner,
		Decimals:       decimals,
		TokenProgramID: ix.ProgramID,
	}
	return true
}
