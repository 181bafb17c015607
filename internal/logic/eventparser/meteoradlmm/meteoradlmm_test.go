package meteoradlmm

import (
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/eptest"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user     = testkit.Key(1)
	lbPair   = testkit.Key(100)
	mintX    = testkit.Key(101)
	reserveX = testkit.Key(102)
	reserveY = testkit.Key(103)
	userX    = testkit.Key(104)
	userY    = testkit.Key(105)
)

func balances(b *testkit.TxBuilder) *testkit.TxBuilder {
	return b.
		TokenAccount(userX, mintX, user, 6, 0, 3_000_000).
		TokenAccount(userY, consts.USDCMint, user, 6, 10_000_000, 4_000_000).
		TokenAccount(reserveX, mintX, lbPair, 6, 50_000_000, 47_000_000).
		TokenAccount(reserveY, consts.USDCMint, lbPair, 6, 0, 6_000_000)
}

func TestSwapVariantsShareLayout(t *testing.T) {
	for _, name := range []string{"swap", "swap2", "swap_exact_out", "swap_exact_out2", "swap_with_price_impact2"} {
		t.Run(name, func(t *testing.T) {
			b := balances(testkit.NewTx(user))
			swap := b.Ix(consts.MeteoraDLMMProgram, discriminator.Compute("global:"+name, 8),
				lbPair, testkit.Key(106), reserveX, reserveY, userY, userX, mintX, consts.USDCMint)
			b.Inner(swap, consts.TokenProgram, testkit.TransferData(6_000_000), userY, reserveY, user)
			b.Inner(swap, consts.TokenProgram, testkit.TransferData(3_000_000), reserveX, userX, lbPair)

			trades := eptest.Trades(eptest.Run(t, b.Raw(), nil, RegisterHandlers))
			require.Len(t, trades, 1)
			assert.Equal(t, core.TradeBuy, trades[0].Type)
			assert.Equal(t, lbPair, trades[0].Pool)
			assert.Equal(t, "6", trades[0].InputToken.Amount)
			assert.Equal(t, "3", trades[0].OutputToken.Amount)
			assert.Equal(t, "MeteoraDLMM", trades[0].AMM)
		})
	}
}

func TestPermissionPairCreate(t *testing.T) {
	accounts := make([]types.Pubkey, 13)
	for i := range accounts {
		accounts[i] = testkit.Key(byte(110 + i))
	}
	accounts[1], accounts[3], accounts[4] = lbPair, mintX, consts.USDCMint
	accounts[5], accounts[6], accounts[8] = reserveX, reserveY, user

	b := testkit.NewTx(user)
	b.Ix(consts.MeteoraDLMMProgram, discriminator.Compute("global:initialize_permission_lb_pair", 8), accounts...)

	pools := eptest.Pools(eptest.Run(t, b.Raw(), nil, RegisterHandlers))
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolCreate, pools[0].Type)
	assert.Equal(t, lbPair, pools[0].Pool)
	assert.Equal(t, mintX, pools[0].Token0Mint)
	assert.Equal(t, consts.USDCMint, pools[0].Token1Mint)
	assert.Equal(t, user, pools[0].User)
}

func TestRemoveLiquidityByRange2(t *testing.T) {
	accounts := make([]types.Pubkey, 12)
	for i := range accounts {
		accounts[i] = testkit.Key(byte(130 + i))
	}
	accounts[1], accounts[3], accounts[4] = lbPair, userX, userY
	accounts[5], accounts[6], accounts[7], accounts[8], accounts[9] = reserveX, reserveY, mintX, consts.USDCMint, user

	b := balances(testkit.NewTx(user))
	rm := b.Ix(consts.MeteoraDLMMProgram, discriminator.Compute("global:remove_liquidity_by_range2", 8), accounts...)
	b.Inner(rm, consts.TokenProgram, testkit.TransferData(3_000_000), reserveX, userX, lbPair)

	pools := eptest.Pools(eptest.Run(t, b.Raw(), nil, RegisterHandlers))
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolRemove, pools[0].Type)
	assert.Equal(t, "3", pools[0].Token0.Amount)
	assert.Nil(t, pools[0].Token1)
	assert.Equal(t, user, pools[0].User)
}
