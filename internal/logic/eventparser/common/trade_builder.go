package common

import (
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/tools"
	"dex-parser-sol/internal/types"
)

// TradeParams 构造一条成交所需的协议侧信息；Type 为空时按 quote 推断方向
type TradeParams struct {
	Type   core.TradeType
	Pool   types.Pubkey
	User   types.Pubkey
	Input  core.TokenAmount
	Output core.TokenAmount
	Fee    *core.FeeInfo
	Fees   []core.FeeInfo
	AMM    string
	Route  string
}

// ResolveTradeType 用户支付 quote 获得 base 为 BUY，反之为 SELL；无法识别 quote 时为 SWAP
func ResolveTradeType(input, output types.Pubkey) core.TradeType {
	quote, ok := tools.ChooseQuote(input, output)
	if !ok {
		return core.TradeSwap
	}
	if quote == input {
		return core.TradeBuy
	}
	return core.TradeSell
}

// BuildTrade 由协议解码结果构造 TradeInfo
func BuildTrade(p TradeParams) *core.TradeInfo {
	typ := p.Type
	if typ == "" {
		typ = ResolveTradeType(p.Input.Mint, p.Output.Mint)
	}
	return &core.TradeInfo{
		Type:        typ,
		Pool:        p.Pool,
		InputToken:  p.Input,
		OutputToken: p.Output,
		Fee:         p.Fee,
		Fees:        p.Fees,
		User:        p.User,
		AMM:         p.AMM,
		Route:       p.Route,
	}
}

// TokenAmountOf 由转账腿构造 TokenAmount
func TokenAmountOf(pt *ParsedTransfer) core.TokenAmount {
	return core.NewTokenAmount(pt.Token, pt.Amount, pt.Decimals)
}

// BuildTradeFromTransfers 根据转账方向构建标准的交易记录：
// userToPool 为用户支付的一侧，poolToUser 为用户获得的一侧。
func BuildTradeFromTransfers(
	ctx *ParserContext,
	swap *SwapTransferResult,
	pool types.Pubkey,
	amm string,
) *core.TradeInfo {
	user := swap.PoolToUser.DestWallet
	if user.IsZero() {
		user = swap.UserToPool.SrcWallet
	}
	if user.IsZero() {
		user = ctx.Signer()
	}
	return BuildTrade(TradeParams{
		Pool:   pool,
		User:   user,
		Input:  TokenAmountOf(swap.UserToPool),
		Output: TokenAmountOf(swap.PoolToUser),
		AMM:    amm,
	})
}
