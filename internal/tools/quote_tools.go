package tools

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/types"
)

const (
	WSOLDecimals = 9
	USDCDecimals = 6
	USDTDecimals = 6
)

// USDQuoteMints 表示具有稳定美元价格参考的常用报价币（右对），用于估值、价格折算等场景。
var USDQuoteMints = []types.Pubkey{
	consts.WSOLMint,
	consts.USDCMint,
	consts.USDTMint,
}

var QuoteDecimals = map[types.Pubkey]uint8{
	consts.WSOLMint: WSOLDecimals,
	consts.USDCMint: USDCDecimals,
	consts.USDTMint: USDTDecimals,
}

// QuotePriority 定义系统内置 quote token 的优先级（数值越小优先级越高）。
var QuotePriority = map[types.Pubkey]int{
	consts.WSOLMint: 1, // 优先级最高，最推荐作为 quote（右对）
	consts.USDCMint: 2,
	consts.USDTMint: 3,

	consts.JitoSOLMint: 101,
	consts.MSOLMint:    102,
	consts.JupSOLMint:  102,
	consts.BSOLMint:    103,
}

// ChooseQuote 根据 QuotePriority 选出更适合作为 quote 的一方。
// 两者都不是已知 quote，或优先级相同时返回 false，此时交易方向记为 SWAP。
func ChooseQuote(a, b types.Pubkey) (quote types.Pubkey, ok bool) {
	pa, oka := QuotePriority[a]
	pb, okb := QuotePriority[b]

	switch {
	case oka && okb:
		if pa < pb {
			return a, true // a 优先级更高 → 更适合当 quote
		}
		if pb < pa {
			return b, true
		}
	case oka:
		return a, true
	case okb:
		return b, true
	}

	return types.Pubkey{}, false
}

// ChooseBaseQuote 同 ChooseQuote，额外返回 base
func ChooseBaseQuote(a, b types.Pubkey) (base, quote types.Pubkey, ok bool) {
	quote, ok = ChooseQuote(a, b)
	if !ok {
		return types.Pubkey{}, types.Pubkey{}, false
	}
	if quote == a {
		return b, a, true
	}
	return a, b, true
}

// KnownDecimals 内置 quote 的精度，未知 mint 返回 false
func KnownDecimals(mint types.Pubkey) (uint8, bool) {
	if mint == consts.NativeSOLMint {
		return consts.SOLDecimals, true
	}
	d, ok := QuoteDecimals[mint]
	return d, ok
}
