package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/tools"
	"dex-parser-sol/internal/types"
)

// FeeComponent 协议报告的单项手续费
type FeeComponent struct {
	Kind      core.FeeKind
	Amount    uint64
	Recipient types.Pubkey // 零值表示未知
}

func feeInfo(kind core.FeeKind, mint types.Pubkey, raw string, decimals uint8, recipient types.Pubkey) core.FeeInfo {
	amount, _ := tools.ScaleRawString(raw, decimals)
	info := core.FeeInfo{
		Kind:      kind,
		Mint:      mint,
		AmountRaw: raw,
		Amount:    amount,
		Decimals:  decimals,
	}
	if !recipient.IsZero() {
		info.Recipient = recipient.String()
	}
	return info
}

// BuildFees 逐项列出非零手续费，并给出等于各项之和的汇总；全部为零时两者都为空。
// 汇总按大整数相加，不会溢出。
func BuildFees(mint types.Pubkey, decimals uint8, components ...FeeComponent) (*core.FeeInfo, []core.FeeInfo) {
	var items []core.FeeInfo
	var amounts []uint64
	for _, c := range components {
		if c.Amount == 0 {
			continue
		}
		items = append(items, feeInfo(c.Kind, mint, tools.FormatRaw(c.Amount), decimals, c.Recipient))
		amounts = append(amounts, c.Amount)
	}
	if len(items) == 0 {
		return nil, nil
	}
	total := feeInfo(core.FeeTotal, mint, tools.SumRaw(amounts...), decimals, types.Pubkey{})
	return &total, items
}
