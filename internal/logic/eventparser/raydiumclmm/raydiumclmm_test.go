package raydiumclmm

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
	user      = testkit.Key(1)
	poolState = testkit.Key(120)
	mint      = testkit.Key(121)
	userSol   = testkit.Key(122)
	userTok   = testkit.Key(123)
	vault0    = testkit.Key(124)
	vault1    = testkit.Key(125)
)

func TestSwapAndDecrease(t *testing.T) {
	b := testkit.NewTx(user).
		TokenAccount(userSol, consts.WSOLMint, user, 9, 0, 2_000_000_000).
		TokenAccount(userTok, mint, user, 6, 9_000_000, 0).
		TokenAccount(vault0, consts.WSOLMint, poolState, 9, 5_000_000_000, 3_000_000_000).
		TokenAccount(vault1, mint, poolState, 6, 0, 9_000_000)

	swap := b.Ix(consts.RaydiumCLMMProgram, append(discriminator.Compute("global:swap", 8), make([]byte, 33)...),
		user, testkit.Key(126), poolState, userTok, userSol, vault1, vault0)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(9_000_000), userTok, vault1, user)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(1_500_000_000), vault0, userSol, poolState)

	dec := make([]types.Pubkey, 11)
	for i := range dec {
		dec[i] = testkit.Key(byte(140 + i))
	}
	dec[0], dec[3], dec[5], dec[6], dec[9], dec[10] = user, poolState, vault0, vault1, userSol, userTok
	rm := b.Ix(consts.RaydiumCLMMProgram, discriminator.Compute("global:decrease_liquidity", 8), dec...)
	b.Inner(rm, consts.TokenProgram, testkit.TransferData(500_000_000), vault0, userSol, poolState)

	ctx := eptest.Run(t, b.Raw(), nil, RegisterHandlers)
	events := ctx.Events()
	require.Len(t, events, 2)

	trade := events[0].Trade
	require.NotNil(t, trade)
	assert.Equal(t, core.TradeSell, trade.Type)
	assert.Equal(t, "9", trade.InputToken.Amount)
	assert.Equal(t, "1.5", trade.OutputToken.Amount)

	remove := events[1].Pool
	require.NotNil(t, remove)
	assert.Equal(t, core.PoolRemove, remove.Type)
	assert.Equal(t, poolState, remove.Pool)
	assert.Equal(t, "0.5", remove.Token0.Amount)
	assert.Equal(t, consts.WSOLMint, remove.Token0Mint)
	assert.Equal(t, "1", remove.Idx)
}

func TestCreatePoolWithoutTransfers(t *testing.T) {
	b := testkit.NewTx(user)
	b.Ix(consts.RaydiumCLMMProgram, discriminator.Compute("global:create_pool", 8),
		user, testkit.Key(126), poolState, consts.WSOLMint, mint, vault0, vault1,
		testkit.Key(127), testkit.Key(128), consts.TokenProgram, consts.TokenProgram)

	ctx := eptest.Run(t, b.Raw(), nil, RegisterHandlers)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolCreate, pools[0].Type)
	assert.Equal(t, consts.WSOLMint, pools[0].Token0Mint)
	assert.Equal(t, mint, pools[0].Token1Mint)
	assert.Empty(t, ctx.Warnings())
}
