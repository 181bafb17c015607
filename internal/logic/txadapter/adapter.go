package txadapter

import (
	"fmt"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/types"
)

// buildAccounts 构造交易中完整的账户列表。
// 拼接 message.accountKeys 与 Address Lookup Table 中的 writable / readonly 地址，
// 供后续通过 accountIndex 统一索引使用；ALT 加载的账户均不是 signer。
func buildAccounts(raw *core.RawTransaction) []core.AccountMeta {
	accounts := make([]core.AccountMeta, 0, raw.AccountCount())
	for _, a := range raw.AccountKeys {
		accounts = append(accounts, core.AccountMeta{Pubkey: a.Pubkey, Signer: a.Signer, Writable: a.Writable})
	}
	for _, pk := range raw.LoadedWritable {
		accounts = append(accounts, core.AccountMeta{Pubkey: pk, Writable: true})
	}
	for _, pk := range raw.LoadedReadonly {
		accounts = append(accounts, core.AccountMeta{Pubkey: pk})
	}
	return accounts
}

// validateIndexes 在解析前一次性检查所有下标，越界即整笔交易结构错误
func validateIndexes(raw *core.RawTransaction, total int) error {
	check := func(idx uint32, where string) error {
		if int(idx) >= total {
			return fmt.Errorf("%w: %s references %d, accounts %d", core.ErrAccountIndexOutOfRange, where, idx, total)
		}
		return nil
	}
	for i, ix := range raw.Instructions {
		if err := check(ix.ProgramIDIndex, fmt.Sprintf("instruction %d program", i)); err != nil {
			return err
		}
		for j, a := range ix.Accounts {
			if err := check(a, fmt.Sprintf("instruction %d account %d", i, j)); err != nil {
				return err
			}
		}
	}
	for g, group := range raw.InnerGroups {
		for i, ix := range group.Instructions {
			if err := check(ix.ProgramIDIndex, fmt.Sprintf("inner group %d instruction %d program", g, i)); err != nil {
				return err
			}
			for j, a := range ix.Accounts {
				if err := check(a, fmt.Sprintf("inner group %d instruction %d account %d", g, i, j)); err != nil {
					return err
				}
			}
		}
	}
	for _, list := range [][]core.RawTokenBalance{raw.PreTokenBalances, raw.PostTokenBalances} {
		for _, b := range list {
			if err := check(b.AccountIndex, "token balance"); err != nil {
				return err
			}
		}
	}
	if len(raw.PreBalances) > total || len(raw.PostBalances) > total {
		return fmt.Errorf("%w: native balances %d/%d, accounts %d",
			core.ErrAccountIndexOutOfRange, len(raw.PreBalances), len(raw.PostBalances), total)
	}
	return nil
}

func resolveAccounts(accounts []core.AccountMeta, idx []uint32) []types.Pubkey {
	out := make([]types.Pubkey, len(idx))
	for i, a := range idx {
		out[i] = accounts[a].Pubkey
	}
	return out
}

// buildInstructions 解析主指令与 inner 指令组，保持来源顺序，不做展平
func buildInstructions(raw *core.RawTransaction, accounts []core.AccountMeta) ([]*core.AdaptedInstruction, []core.AdaptedInnerGroup) {
	topLevel := make([]*core.AdaptedInstruction, len(raw.Instructions))
	for i, ix := range raw.Instructions {
		topLevel[i] = &core.AdaptedInstruction{
			IxIndex:     uint16(i),
			StackHeight: 1,
			ProgramID:   accounts[ix.ProgramIDIndex].Pubkey,
			Accounts:    resolveAccounts(accounts, ix.Accounts),
			Data:        ix.Data,
		}
	}

	groups := make([]core.AdaptedInnerGroup, len(raw.InnerGroups))
	for g, group := range raw.InnerGroups {
		list := make([]*core.AdaptedInstruction, len(group.Instructions))
		for i, ix := range group.Instructions {
			list[i] = &core.AdaptedInstruction{
				IxIndex:     uint16(group.Index),
				StackHeight: ix.StackHeight,
				ProgramID:   accounts[ix.ProgramIDIndex].Pubkey,
				Accounts:    resolveAccounts(accounts, ix.Accounts),
				Data:        ix.Data,
			}
		}
		groups[g] = core.AdaptedInnerGroup{Index: group.Index, Instructions: list}
	}
	return topLevel, groups
}

func tokenProgramOf(programID string) (types.Pubkey, bool) {
	switch programID {
	case "", consts.TokenProgramStr:
		return consts.TokenProgram, true
	case consts.TokenProgram2022Str:
		return consts.TokenProgram2022, true
	}
	return types.Pubkey{}, false
}

// buildBalances 构建交易中的 TokenBalance 映射与 decimals 映射。
//   - balanceMap：token account → TokenBalance（含 mint、owner、pre/post 余额等）
//   - tokenDecimals：当前交易中涉及的 mint → decimals（去重 + 有序）
func buildBalances(raw *core.RawTransaction, accounts []core.AccountMeta) (map[types.Pubkey]*core.TokenBalance, []core.TokenDecimals, error) {
	postList := raw.PostTokenBalances
	preList := raw.PreTokenBalances

	capacity := len(preList) + len(postList)
	balanceMap := make(map[types.Pubkey]*core.TokenBalance, capacity)
	mintResolver := newMintResolver(capacity)
	ownerResolver := newOwnerResolver(capacity)

	// 先处理 Post（代表账户最终状态），PreBalance 默认为 0
	for _, post := range postList {
		// 仅处理标准 SPL Token（TokenProgram / Token2022），跳过非标准模拟账户
		programID, ok := tokenProgramOf(post.ProgramID)
		if !ok {
			continue
		}
		mint, err := mintResolver.resolve(post.Mint, post.Decimals)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: post balance mint: %v", core.ErrInvalidTransaction, err)
		}
		owner, err := ownerResolver.resolve(post.Owner)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: post balance owner: %v", core.ErrInvalidTransaction, err)
		}
		account := accounts[post.AccountIndex].Pubkey
		balanceMap[account] = &core.TokenBalance{
			AccountIndex:   post.AccountIndex,
			TokenAccount:   account,
			Token:          mint,
			PostBalance:    post.Amount,
			PostOwner:      owner,
			Decimals:       post.Decimals,
			TokenProgramID: programID,
		}
	}

	// 再补充 Pre（如账户只出现在 Pre 中，说明可能被关闭）
	for _, pre := range preList {
		programID, ok := tokenProgramOf(pre.ProgramID)
		if !ok {
			continue
		}
		owner, err := ownerResolver.resolve(pre.Owner)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: pre balance owner: %v", core.ErrInvalidTransaction, err)
		}
		account := accounts[pre.AccountIndex].Pubkey
		if tb, ok := balanceMap[account]; ok {
			tb.HasPreOwner = true
			tb.PreOwner = owner
			tb.PreBalance = pre.Amount
			continue
		}
		mint, err := mintResolver.resolve(pre.Mint, pre.Decimals)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: pre balance mint: %v", core.ErrInvalidTransaction, err)
		}
		// Pre-only 情况默认设置 PostOwner = PreOwner
		balanceMap[account] = &core.TokenBalance{
			AccountIndex:   pre.AccountIndex,
			TokenAccount:   account,
			Token:          mint,
			HasPreOwner:    true,
			PreOwner:       owner,
			PostOwner:      owner,
			PreBalance:     pre.Amount,
			Decimals:       pre.Decimals,
			TokenProgramID: programID,
		}
	}

	return balanceMap, mintResolver.buildTokenDecimals(), nil
}

// buildSolBalances 按账户下标对齐 pre/post lamports
func buildSolBalances(raw *core.RawTransaction, accounts []core.AccountMeta) map[types.Pubkey]*core.SolBalance {
	n := max(len(raw.PreBalances), len(raw.PostBalances))
	balances := make(map[types.Pubkey]*core.SolBalance, n)
	for i := 0; i < n; i++ {
		b := &core.SolBalance{AccountIndex: uint32(i), Account: accounts[i].Pubkey}
		if i < len(raw.PreBalances) {
			b.PreBalance = raw.PreBalances[i]
		}
		if i < len(raw.PostBalances) {
			b.PostBalance = raw.PostBalances[i]
		}
		balances[b.Account] = b
	}
	return balances
}

// Adapt 将 RawTransaction 转换为统一的 AdaptedTx 视图。
// 完整流程：
//  1. 构建完整账户列表（含 Address Lookup）；
//  2. 校验所有下标，越界返回 ErrAccountIndexOutOfRange；
//  3. 解析主指令与 inner 指令组（不排序，由 classifier 负责）；
//  4. 构建 Token / SOL 余额与 decimals 信息。
//
// 输入只读；任何 panic 都会被 recover 并转为 ErrInvalidTransaction。
func Adapt(raw *core.RawTransaction) (_ *core.AdaptedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: adapt panic: %v", core.ErrInvalidTransaction, r)
		}
	}()

	if raw == nil || len(raw.Signature) == 0 || len(raw.AccountKeys) == 0 {
		return nil, fmt.Errorf("%w: missing signature or accountKeys", core.ErrInvalidTransaction)
	}

	accounts := buildAccounts(raw)
	if err := validateIndexes(raw, len(accounts)); err != nil {
		return nil, err
	}

	signers := make([]types.Pubkey, 0, 1)
	for _, a := range raw.AccountKeys {
		if a.Signer {
			signers = append(signers, a.Pubkey)
		}
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: no signer", core.ErrInvalidTransaction)
	}

	topLevel, groups := buildInstructions(raw, accounts)

	balances, tokenDecimals, err := buildBalances(raw, accounts)
	if err != nil {
		return nil, err
	}

	return &core.AdaptedTx{
		TxCtx: &core.TxContext{
			BlockTime: raw.BlockTime,
			Slot:      raw.Slot,
			BlockHash: raw.BlockHash,
		},
		TxIndex:       raw.TxIndex,
		Signature:     raw.Signature,
		Signers:       signers,
		Accounts:      accounts,
		TopLevel:      topLevel,
		InnerGroups:   groups,
		LogMessages:   raw.LogMessages,
		SolBalances:   buildSolBalances(raw, accounts),
		Balances:      balances,
		TokenDecimals: tokenDecimals,
	}, nil
}
