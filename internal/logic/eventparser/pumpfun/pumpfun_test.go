package pumpfun

import (
	"encoding/base64"
	"encoding/binary"
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/eventparser/eptest"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/pkg/layout"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user         = testkit.Key(1)
	global       = testkit.Key(10)
	feeRecipient = testkit.Key(11)
	mint         = testkit.Key(12)
	curve        = testkit.Key(13)
	curveVault   = testkit.Key(14)
	userATA      = testkit.Key(15)
	creatorVault = testkit.Key(16)
	creator      = testkit.Key(17)
)

func swapAccounts() []types.Pubkey {
	return []types.Pubkey{
		global, feeRecipient, mint, curve, curveVault, userATA, user,
		consts.SystemProgram, consts.TokenProgram, creatorVault, consts.PumpFunEventAuthority, consts.PumpFunProgram,
	}
}

func swapData(name string, amount, limit uint64) []byte {
	data := discriminator.Compute("global:"+name, discriminator.EventWidth)
	data = binary.LittleEndian.AppendUint64(data, amount)
	return binary.LittleEndian.AppendUint64(data, limit)
}

func eventData(t *testing.T, name string, s *layout.Struct, values map[string]any) []byte {
	t.Helper()
	body, err := s.Encode(values)
	require.NoError(t, err)
	return append(discriminator.Compute("event:"+name, discriminator.EventWidth), body...)
}

func cpiEvent(data []byte) []byte {
	return append(append([]byte(nil), common.CPIEventPrefix...), data...)
}

func tradeValues(isBuy bool, sol, token uint64) map[string]any {
	return map[string]any{
		"mint":                   mint,
		"sol_amount":             sol,
		"token_amount":           token,
		"is_buy":                 isBuy,
		"user":                   user,
		"timestamp":              int64(1_720_000_000),
		"virtual_sol_reserves":   uint64(30_000_000_000),
		"virtual_token_reserves": uint64(1_073_000_000_000_000),
	}
}

func withFees(v map[string]any, fee, creatorFee uint64) map[string]any {
	v["real_sol_reserves"] = uint64(0)
	v["real_token_reserves"] = uint64(793_100_000_000_000)
	v["fee_recipient"] = feeRecipient
	v["fee_basis_points"] = uint64(95)
	v["fee"] = fee
	v["creator"] = creator
	v["creator_fee_basis_points"] = uint64(5)
	v["creator_fee"] = creatorFee
	return v
}

func run(t *testing.T, b *testkit.TxBuilder) *common.ParserContext {
	return eptest.Run(t, b.Raw(), nil, RegisterHandlers)
}

func TestRegistryPrefixes(t *testing.T) {
	for _, e := range instructionRegistry.Entries() {
		assert.Equal(t, discriminator.Compute(e.Signature, 8), e.Prefix, e.Name)
	}
	name, ok := instructionRegistry.Lookup([]byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea})
	require.True(t, ok)
	assert.Equal(t, "global:buy", name)
	name, ok = eventRegistry.Lookup(discriminator.Compute("event:TradeEvent", 8))
	require.True(t, ok)
	assert.Equal(t, "event:TradeEvent", name)
}

func TestBuyFromCPIEvent(t *testing.T) {
	b := testkit.NewTx(user).TokenAccount(userATA, mint, user, 6, 0, 500_000_000)
	buy := b.Ix(consts.PumpFunProgram, swapData("buy", 500_000_000, 1_100_000_000), swapAccounts()...)
	b.Inner(buy, consts.PumpFunProgram,
		cpiEvent(eventData(t, "TradeEvent", tradeEventLayout, withFees(tradeValues(true, 1_000_000_000, 500_000_000), 100, 0))),
		consts.PumpFunEventAuthority)

	ctx := run(t, b)
	trades := eptest.Trades(ctx)
	require.Len(t, trades, 1)
	trade := trades[0]
	assert.Equal(t, core.TradeBuy, trade.Type)
	assert.Equal(t, consts.WSOLMint, trade.InputToken.Mint)
	assert.Equal(t, "1000000000", trade.InputToken.AmountRaw)
	assert.Equal(t, "1", trade.InputToken.Amount)
	assert.Equal(t, mint, trade.OutputToken.Mint)
	assert.Equal(t, "500", trade.OutputToken.Amount)
	assert.Equal(t, uint8(6), trade.OutputToken.Decimals)
	assert.Equal(t, curve, trade.Pool)
	assert.Equal(t, user, trade.User)
	assert.Equal(t, consts.PumpFunProgram, trade.ProgramID)
	assert.Equal(t, "Pumpfun", trade.AMM)
	assert.Equal(t, "0", trade.Idx)

	require.Len(t, trade.Fees, 1)
	assert.Equal(t, core.FeeProtocol, trade.Fees[0].Kind)
	assert.Equal(t, feeRecipient.String(), trade.Fees[0].Recipient)
	require.NotNil(t, trade.Fee)
	assert.Equal(t, "100", trade.Fee.AmountRaw)
	assert.Empty(t, ctx.Warnings())
	assert.Empty(t, ctx.Unknowns())
}

func TestSellFromProgramDataLog(t *testing.T) {
	b := testkit.NewTx(user).TokenAccount(userATA, mint, user, 6, 500_000_000, 0)
	b.Ix(consts.PumpFunProgram, swapData("sell", 500_000_000, 900_000_000), swapAccounts()...)
	data := eventData(t, "TradeEvent", tradeEventLayout, tradeValues(false, 990_000_000, 500_000_000))
	program := consts.PumpFunProgramStr
	b.Logs(
		"Program "+program+" invoke [1]",
		"Program log: Instruction: Sell",
		"Program data: "+base64.StdEncoding.EncodeToString(data),
		"Program "+program+" success",
	)

	ctx := run(t, b)
	trades := eptest.Trades(ctx)
	require.Len(t, trades, 1)
	assert.Equal(t, core.TradeSell, trades[0].Type)
	assert.Equal(t, mint, trades[0].InputToken.Mint)
	assert.Equal(t, "500", trades[0].InputToken.Amount)
	assert.Equal(t, "0.99", trades[0].OutputToken.Amount)
	assert.Nil(t, trades[0].Fee)
	assert.Empty(t, trades[0].Fees)
}

func TestBuyCompletesCurve(t *testing.T) {
	b := testkit.NewTx(user).TokenAccount(userATA, mint, user, 6, 0, 500_000_000)
	buy := b.Ix(consts.PumpFunProgram, swapData("buy", 500_000_000, 1_100_000_000), swapAccounts()...)
	b.Inner(buy, consts.PumpFunProgram,
		cpiEvent(eventData(t, "TradeEvent", tradeEventLayout, withFees(tradeValues(true, 1_000_000_000, 500_000_000), 100, 50))),
		consts.PumpFunEventAuthority)
	b.Inner(buy, consts.PumpFunProgram,
		cpiEvent(eventData(t, "CompleteEvent", completeEventLayout, map[string]any{
			"user": user, "mint": mint, "bonding_curve": curve, "timestamp": int64(1_720_000_000),
		})),
		consts.PumpFunEventAuthority)

	ctx := run(t, b)
	events := ctx.Events()
	require.Len(t, events, 2)
	assert.Equal(t, core.EventTrade, events[0].Kind)
	require.Len(t, events[0].Trade.Fees, 2)
	assert.Equal(t, "150", events[0].Trade.Fee.AmountRaw)

	assert.Equal(t, core.EventPool, events[1].Kind)
	pool := events[1].Pool
	assert.Equal(t, core.PoolComplete, pool.Type)
	assert.Equal(t, curve, pool.Pool)
	assert.Equal(t, mint, pool.Token0Mint)
	assert.Equal(t, "0-1", pool.Idx)
}

func TestBuyFallsBackToTransfers(t *testing.T) {
	b := testkit.NewTx(user).
		TokenAccount(userATA, mint, user, 6, 0, 500_000_000).
		TokenAccount(curveVault, mint, curve, 6, 800_000_000, 300_000_000)
	buy := b.Ix(consts.PumpFunProgram, swapData("buy", 500_000_000, 1_100_000_000), swapAccounts()...)
	b.Inner(buy, consts.TokenProgram, testkit.TransferData(500_000_000), curveVault, userATA, curve)
	b.Inner(buy, consts.SystemProgram, testkit.SystemTransferData(1_000_000_000), user, curve)
	b.Inner(buy, consts.SystemProgram, testkit.SystemTransferData(10_000_000), user, feeRecipient)

	ctx := run(t, b)
	trades := eptest.Trades(ctx)
	require.Len(t, trades, 1)
	assert.Equal(t, core.TradeBuy, trades[0].Type)
	assert.Equal(t, "1", trades[0].InputToken.Amount)
	assert.Equal(t, "500", trades[0].OutputToken.Amount)
	require.Len(t, trades[0].Fees, 1)
	assert.Equal(t, "10000000", trades[0].Fee.AmountRaw)
}

func TestSellWithoutEventWarns(t *testing.T) {
	b := testkit.NewTx(user).TokenAccount(userATA, mint, user, 6, 500_000_000, 0)
	b.Ix(consts.PumpFunProgram, swapData("sell", 500_000_000, 0), swapAccounts()...)

	ctx := run(t, b)
	assert.Empty(t, ctx.Events())
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, core.WarnMissingTransfer, ctx.Warnings()[0].Kind)
}

func TestUnknownAndTruncatedInstructions(t *testing.T) {
	b := testkit.NewTx(user)
	b.Ix(consts.PumpFunProgram, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, swapAccounts()...)
	b.Ix(consts.PumpFunProgram, swapData("buy", 1, 2)[:12], swapAccounts()...)

	ctx := run(t, b)
	require.Len(t, ctx.Unknowns(), 1)
	assert.Equal(t, "0", ctx.Unknowns()[0].Idx)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, core.WarnTruncatedPayload, ctx.Warnings()[0].Kind)
	assert.Equal(t, "1", ctx.Warnings()[0].Idx)
}

func TestCreateEmitsPool(t *testing.T) {
	args, err := createArgsLayout.Encode(map[string]any{"name": "Dog", "symbol": "DOG", "uri": "https://x/dog.json"})
	require.NoError(t, err)
	data := append(discriminator.Compute("global:create", 8), args...)

	accounts := []types.Pubkey{
		mint, testkit.Key(20), curve, curveVault, global, testkit.Key(21), testkit.Key(22), user,
		consts.SystemProgram, consts.TokenProgram, consts.AssociatedTokenProgram, testkit.Key(23),
		consts.PumpFunEventAuthority, consts.PumpFunProgram,
	}
	b := testkit.NewTx(user)
	create := b.Ix(consts.PumpFunProgram, data, accounts...)
	b.Inner(create, consts.PumpFunProgram,
		cpiEvent(eventData(t, "CreateEvent", createEventLayout, map[string]any{
			"name": "Dog", "symbol": "DOG", "uri": "https://x/dog.json",
			"mint": mint, "bonding_curve": curve, "user": user,
		})),
		consts.PumpFunEventAuthority)

	ctx := run(t, b)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolCreate, pools[0].Type)
	assert.Equal(t, curve, pools[0].Pool)
	assert.Equal(t, mint, pools[0].Token0Mint)
	assert.Equal(t, consts.WSOLMint, pools[0].Token1Mint)
	assert.Equal(t, user, pools[0].User)
	assert.Equal(t, 3, pools[0].Accounts.PoolToken0)
	assert.Empty(t, ctx.Warnings())
}

func TestMigrateCompletes(t *testing.T) {
	accounts := []types.Pubkey{global, testkit.Key(30), mint, curve, curveVault, user}
	b := testkit.NewTx(user)
	b.Ix(consts.PumpFunProgram, discriminator.Compute("global:migrate", 8), accounts...)

	ctx := run(t, b)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolComplete, pools[0].Type)
	assert.Equal(t, curve, pools[0].Pool)
	assert.Equal(t, consts.WSOLMint, pools[0].Token1Mint)
}

func TestDecodeEventVariants(t *testing.T) {
	ev, err := DecodeEvent(append(discriminator.Compute("event:Nope", 8), 1, 2))
	require.NoError(t, err)
	unknown, ok := ev.(UnknownEvent)
	require.True(t, ok)
	assert.Len(t, unknown.Discriminator, 8)

	legacy := eventData(t, "TradeEvent", tradeEventLayout, tradeValues(true, 1, 2))
	ev, err = DecodeEvent(legacy)
	require.NoError(t, err)
	trade, ok := ev.(TradeEvent)
	require.True(t, ok)
	assert.False(t, trade.HasFee)
	assert.True(t, trade.IsBuy)

	_, err = DecodeEvent(legacy[:20])
	assert.ErrorIs(t, err, layout.ErrTruncatedPayload)
}

func TestUnknownInstructionKeepsLogEventAlignment(t *testing.T) {
	b := testkit.NewTx(user).TokenAccount(userATA, mint, user, 6, 500_000_000, 0)
	b.Ix(consts.PumpFunProgram, []byte{9, 9, 9, 9, 9, 9, 9, 9}, swapAccounts()...)
	b.Ix(consts.PumpFunProgram, swapData("sell", 500_000_000, 900_000_000), swapAccounts()...)
	other := eventData(t, "TradeEvent", tradeEventLayout, tradeValues(true, 7_000_000_000, 1_000_000))
	own := eventData(t, "TradeEvent", tradeEventLayout, tradeValues(false, 990_000_000, 500_000_000))
	program := consts.PumpFunProgramStr
	b.Logs(
		"Program "+program+" invoke [1]",
		"Program data: "+base64.StdEncoding.EncodeToString(other),
		"Program "+program+" success",
		"Program "+program+" invoke [1]",
		"Program log: Instruction: Sell",
		"Program data: "+base64.StdEncoding.EncodeToString(own),
		"Program "+program+" success",
	)

	ctx := run(t, b)
	require.Len(t, ctx.Unknowns(), 1)
	assert.Equal(t, "0", ctx.Unknowns()[0].Idx)
	assert.Empty(t, ctx.Warnings())

	trades := eptest.Trades(ctx)
	require.Len(t, trades, 1)
	assert.Equal(t, "1", trades[0].Idx)
	assert.Equal(t, core.TradeSell, trades[0].Type)
	assert.Equal(t, "500", trades[0].InputToken.Amount)
	assert.Equal(t, "0.99", trades[0].OutputToken.Amount)
}
