package orcawhirlpool

import (
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/logic/eventparser/eptest"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user      = testkit.Key(1)
	whirlpool = testkit.Key(80)
	mintB     = testkit.Key(81)
	ownerA    = testkit.Key(82)
	ownerB    = testkit.Key(83)
	vaultA    = testkit.Key(84)
	vaultB    = testkit.Key(85)
)

func ixData(name string) []byte {
	return append(discriminator.Compute("global:"+name, 8), make([]byte, 34)...)
}

func balances(b *testkit.TxBuilder) *testkit.TxBuilder {
	return b.
		TokenAccount(ownerA, consts.WSOLMint, user, 9, 1_000_000_000, 0).
		TokenAccount(ownerB, mintB, user, 6, 7_000_000, 0).
		TokenAccount(vaultA, consts.WSOLMint, whirlpool, 9, 0, 1_000_000_000).
		TokenAccount(vaultB, mintB, whirlpool, 6, 0, 7_000_000)
}

func run(t *testing.T, b *testkit.TxBuilder) *common.ParserContext {
	return eptest.Run(t, b.Raw(), nil, RegisterHandlers)
}

func TestSwapSellsTokenB(t *testing.T) {
	b := balances(testkit.NewTx(user))
	swap := b.Ix(consts.OrcaWhirlpoolProgram, ixData("swap"),
		consts.TokenProgram, user, whirlpool, ownerA, vaultA, ownerB, vaultB, testkit.Key(86))
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(7_000_000), ownerB, vaultB, user)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(250_000_000), vaultA, ownerA, whirlpool)

	trades := eptest.Trades(run(t, b))
	require.Len(t, trades, 1)
	assert.Equal(t, core.TradeSell, trades[0].Type)
	assert.Equal(t, whirlpool, trades[0].Pool)
	assert.Equal(t, mintB, trades[0].InputToken.Mint)
	assert.Equal(t, "7", trades[0].InputToken.Amount)
	assert.Equal(t, "0.25", trades[0].OutputToken.Amount)
}

func TestSwapV2ChecksMints(t *testing.T) {
	accounts := func(a, b types.Pubkey) []types.Pubkey {
		return []types.Pubkey{
			consts.TokenProgram, consts.TokenProgram, testkit.Key(87), user, whirlpool,
			a, b, ownerA, vaultA, ownerB, vaultB,
		}
	}
	cases := []struct {
		name   string
		mintA  types.Pubkey
		trades int
	}{
		{"matching mints", consts.WSOLMint, 1},
		{"foreign mint", testkit.Key(88), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := balances(testkit.NewTx(user))
			swap := b.Ix(consts.OrcaWhirlpoolProgram, ixData("swap_v2"), accounts(tc.mintA, mintB)...)
			b.Inner(swap, consts.TokenProgram, testkit.TransferData(1_000_000_000), ownerA, vaultA, user)
			b.Inner(swap, consts.TokenProgram, testkit.TransferData(7_000_000), vaultB, ownerB, whirlpool)

			ctx := run(t, b)
			assert.Len(t, eptest.Trades(ctx), tc.trades)
			assert.Len(t, ctx.Warnings(), 1-tc.trades)
		})
	}
}

func TestInitializePoolAndSingleSidedIncrease(t *testing.T) {
	b := balances(testkit.NewTx(user))
	b.Ix(consts.OrcaWhirlpoolProgram, ixData("initialize_pool"),
		testkit.Key(89), consts.WSOLMint, mintB, user, whirlpool, vaultA, vaultB, testkit.Key(90), consts.TokenProgram)
	inc := b.Ix(consts.OrcaWhirlpoolProgram, ixData("increase_liquidity"),
		whirlpool, consts.TokenProgram, user, testkit.Key(91), testkit.Key(92), ownerA, ownerB, vaultA, vaultB, testkit.Key(93), testkit.Key(94))
	b.Inner(inc, consts.TokenProgram, testkit.TransferData(7_000_000), ownerB, vaultB, user)

	ctx := run(t, b)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 2)

	assert.Equal(t, core.PoolCreate, pools[0].Type)
	assert.Equal(t, consts.WSOLMint, pools[0].Token0Mint)
	assert.Equal(t, mintB, pools[0].Token1Mint)
	assert.Nil(t, pools[0].Token0)

	assert.Equal(t, core.PoolAdd, pools[1].Type)
	assert.Nil(t, pools[1].Token0)
	require.NotNil(t, pools[1].Token1)
	assert.Equal(t, "7", pools[1].Token1.Amount)
	assert.Equal(t, mintB, pools[1].Token1Mint)
}

func TestTooFewAccountsWarns(t *testing.T) {
	b := testkit.NewTx(user)
	b.Ix(consts.OrcaWhirlpoolProgram, ixData("decrease_liquidity_v2"), whirlpool, user)

	ctx := run(t, b)
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, core.WarnInvalidEncoding, ctx.Warnings()[0].Kind)
}
