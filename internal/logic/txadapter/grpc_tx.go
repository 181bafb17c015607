package txadapter

import (
	"fmt"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/types"
	"dex-parser-sol/internal/utils"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// IsValidGrpcTx 过滤掉不需要解析的交易（投票、失败、字段缺失）
func IsValidGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	if tx == nil || // - nil transaction info
		tx.Transaction == nil || // - missing Transaction field
		tx.Transaction.Message == nil || // - missing Message field in transaction
		len(tx.Transaction.Signatures) == 0 || // - missing transaction signature
		len(tx.Transaction.Signatures[0]) != 64 || // - invalid transaction signature length
		tx.IsVote || // - vote transaction skipped
		tx.Meta == nil || // - missing transaction meta data
		tx.Meta.Err != nil { // - transaction execution failed
		return false
	}
	return true
}

func toPubkeys(list [][]byte, where string) ([]types.Pubkey, error) {
	out := make([]types.Pubkey, len(list))
	for i, b := range list {
		if len(b) != 32 {
			return nil, fmt.Errorf("%w: invalid pubkey in %s at index %d", core.ErrInvalidTransaction, where, i)
		}
		copy(out[i][:], b)
	}
	return out, nil
}

// buildRawAccounts 按 message header 推导 signer / writable 标记：
// 前 NumRequiredSignatures 个为 signer，其中末尾 NumReadonlySignedAccounts 个只读；
// 非 signer 部分末尾 NumReadonlyUnsignedAccounts 个只读。
func buildRawAccounts(msg *pb.Message) ([]core.RawAccount, error) {
	keys, err := toPubkeys(msg.AccountKeys, "accountKeys")
	if err != nil {
		return nil, err
	}

	numSigners, readonlySigned, readonlyUnsigned := 1, 0, 0
	if h := msg.Header; h != nil {
		numSigners = int(h.NumRequiredSignatures)
		readonlySigned = int(h.NumReadonlySignedAccounts)
		readonlyUnsigned = int(h.NumReadonlyUnsignedAccounts)
	}
	if numSigners > len(keys) {
		return nil, fmt.Errorf("%w: invalid signer count %d, accounts %d", core.ErrInvalidTransaction, numSigners, len(keys))
	}

	accounts := make([]core.RawAccount, len(keys))
	for i, pk := range keys {
		signer := i < numSigners
		var writable bool
		if signer {
			writable = i < numSigners-readonlySigned
		} else {
			writable = i < len(keys)-readonlyUnsigned
		}
		accounts[i] = core.RawAccount{Pubkey: pk, Signer: signer, Writable: writable}
	}
	return accounts, nil
}

// convertTokenBalances 金额非法的条目不补 0，跳过并返回告警
func convertTokenBalances(list []*pb.TokenBalance, where string) ([]core.RawTokenBalance, []core.ParseWarning) {
	out := make([]core.RawTokenBalance, 0, len(list))
	var warnings []core.ParseWarning
	for _, b := range list {
		if b == nil {
			continue
		}
		rb := core.RawTokenBalance{
			AccountIndex: b.AccountIndex,
			Mint:         b.Mint,
			Owner:        b.Owner,
			ProgramID:    b.ProgramId,
		}
		if amt := b.UiTokenAmount; amt != nil {
			v, err := utils.ParseUint64(amt.Amount)
			if err != nil {
				warnings = append(warnings, core.ParseWarning{
					Kind:    core.WarnInvalidEncoding,
					Message: fmt.Sprintf("%s account %d: %v", where, b.AccountIndex, err),
				})
				continue
			}
			rb.Amount = v
			rb.Decimals = uint8(amt.Decimals)
		}
		out = append(out, rb)
	}
	return out, warnings
}

func toIndexes(b []byte) []uint32 {
	out := make([]uint32, len(b))
	for i, v := range b {
		out[i] = uint32(v)
	}
	return out
}

// FromGrpcTx 将 gRPC 推送的交易数据转换为与数据源无关的 RawTransaction。
// 调用前应先用 IsValidGrpcTx 过滤；失败交易会保留 Failed 标记。
func FromGrpcTx(txCtx *core.TxContext, tx *pb.SubscribeUpdateTransactionInfo) (*core.RawTransaction, error) {
	if tx == nil || tx.Transaction == nil || tx.Transaction.Message == nil || tx.Meta == nil {
		return nil, fmt.Errorf("%w: missing transaction, message or meta", core.ErrInvalidTransaction)
	}
	if len(tx.Transaction.Signatures) == 0 {
		return nil, fmt.Errorf("%w: missing signature", core.ErrInvalidTransaction)
	}
	msg := tx.Transaction.Message
	meta := tx.Meta

	accounts, err := buildRawAccounts(msg)
	if err != nil {
		return nil, err
	}
	loadedWritable, err := toPubkeys(meta.LoadedWritableAddresses, "loadedWritable")
	if err != nil {
		return nil, err
	}
	loadedReadonly, err := toPubkeys(meta.LoadedReadonlyAddresses, "loadedReadonly")
	if err != nil {
		return nil, err
	}

	instructions := make([]core.RawInstruction, len(msg.Instructions))
	for i, inst := range msg.Instructions {
		instructions[i] = core.RawInstruction{
			ProgramIDIndex: inst.ProgramIdIndex,
			Accounts:       toIndexes(inst.Accounts),
			Data:           inst.Data,
		}
	}

	groups := make([]core.RawInnerGroup, 0, len(meta.InnerInstructions))
	for _, g := range meta.InnerInstructions {
		list := make([]core.RawInnerInstruction, len(g.Instructions))
		for j, inner := range g.Instructions {
			list[j] = core.RawInnerInstruction{
				ProgramIDIndex: inner.ProgramIdIndex,
				Accounts:       toIndexes(inner.Accounts),
				Data:           inner.Data,
				StackHeight:    inner.GetStackHeight(),
			}
		}
		groups = append(groups, core.RawInnerGroup{Index: g.Index, Instructions: list})
	}

	preTokens, preWarnings := convertTokenBalances(meta.PreTokenBalances, "preTokenBalances")
	postTokens, postWarnings := convertTokenBalances(meta.PostTokenBalances, "postTokenBalances")

	raw := &core.RawTransaction{
		TxIndex:           uint32(tx.Index),
		Signature:         tx.Transaction.Signatures[0],
		AccountKeys:       accounts,
		LoadedWritable:    loadedWritable,
		LoadedReadonly:    loadedReadonly,
		Instructions:      instructions,
		InnerGroups:       groups,
		PreBalances:       meta.PreBalances,
		PostBalances:      meta.PostBalances,
		PreTokenBalances:  preTokens,
		PostTokenBalances: postTokens,
		LogMessages:       meta.LogMessages,
		Failed:            meta.Err != nil,
		Warnings:          append(preWarnings, postWarnings...),
	}
	if txCtx != nil {
		raw.Slot = txCtx.Slot
		raw.BlockTime = txCtx.BlockTime
		raw.BlockHash = txCtx.BlockHash
	}
	return raw, nil
}

// AdaptGrpcTx 转换并适配 gRPC 交易，TxContext 使用区块级上下文
func AdaptGrpcTx(txCtx *core.TxContext, tx *pb.SubscribeUpdateTransactionInfo) (*core.AdaptedTx, error) {
	raw, err := FromGrpcTx(txCtx, tx)
	if err != nil {
		return nil, err
	}
	adapted, err := Adapt(raw)
	if err != nil {
		return nil, err
	}
	if txCtx != nil {
		adapted.TxCtx = txCtx
	}
	return adapted, nil
}
