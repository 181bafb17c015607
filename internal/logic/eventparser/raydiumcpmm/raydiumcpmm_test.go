package raydiumcpmm

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
	pool      = testkit.Key(60)
	tokenMint = testkit.Key(61)
	lpMint    = testkit.Key(62)
	userSol   = testkit.Key(63)
	userToken = testkit.Key(64)
	userLp    = testkit.Key(65)
	vaultSol  = testkit.Key(66)
	vaultTok  = testkit.Key(67)
	authority = testkit.Key(68)
)

func ixData(name string, args ...byte) []byte {
	return append(discriminator.Compute("global:"+name, 8), args...)
}

func balances(b *testkit.TxBuilder) *testkit.TxBuilder {
	return b.
		TokenAccount(userSol, consts.WSOLMint, user, 9, 3_000_000_000, 2_000_000_000).
		TokenAccount(userToken, tokenMint, user, 6, 0, 8_000_000).
		TokenAccount(vaultSol, consts.WSOLMint, authority, 9, 0, 1_000_000_000).
		TokenAccount(vaultTok, tokenMint, authority, 6, 100_000_000, 92_000_000).
		TokenAccount(userLp, lpMint, user, 9, 0, 5)
}

func run(t *testing.T, b *testkit.TxBuilder) *common.ParserContext {
	return eptest.Run(t, b.Raw(), nil, RegisterHandlers)
}

func swapAccounts(inMint, outMint types.Pubkey) []types.Pubkey {
	return []types.Pubkey{
		user, authority, testkit.Key(69), pool, userSol, userToken, vaultSol, vaultTok,
		consts.TokenProgram, consts.TokenProgram, inMint, outMint,
	}
}

func TestSwapBaseInput(t *testing.T) {
	b := balances(testkit.NewTx(user))
	swap := b.Ix(consts.RaydiumCPMMProgram, ixData("swap_base_input", make([]byte, 16)...), swapAccounts(consts.WSOLMint, tokenMint)...)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(1_000_000_000), userSol, vaultSol, user)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(8_000_000), vaultTok, userToken, authority)

	ctx := run(t, b)
	trades := eptest.Trades(ctx)
	require.Len(t, trades, 1)
	assert.Equal(t, core.TradeBuy, trades[0].Type)
	assert.Equal(t, pool, trades[0].Pool)
	assert.Equal(t, "1", trades[0].InputToken.Amount)
	assert.Equal(t, "8", trades[0].OutputToken.Amount)
	assert.Equal(t, user, trades[0].User)
	assert.Equal(t, "RaydiumCPMM", trades[0].AMM)
	assert.Equal(t, "0", trades[0].Idx)
}

func TestSwapMintMismatch(t *testing.T) {
	b := balances(testkit.NewTx(user))
	swap := b.Ix(consts.RaydiumCPMMProgram, ixData("swap_base_output"), swapAccounts(testkit.Key(90), testkit.Key(91))...)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(1_000_000_000), userSol, vaultSol, user)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(8_000_000), vaultTok, userToken, authority)

	ctx := run(t, b)
	assert.Empty(t, ctx.Events())
	require.Len(t, ctx.Warnings(), 1)
	assert.Equal(t, core.WarnInvalidEncoding, ctx.Warnings()[0].Kind)
}

func liquidityAccounts() []types.Pubkey {
	return []types.Pubkey{
		user, authority, pool, userLp, userSol, userToken, vaultSol, vaultTok,
		consts.TokenProgram, consts.TokenProgram, consts.WSOLMint, tokenMint, lpMint,
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	b := balances(testkit.NewTx(user))
	dep := b.Ix(consts.RaydiumCPMMProgram, ixData("deposit", make([]byte, 24)...), liquidityAccounts()...)
	b.Inner(dep, consts.TokenProgram, testkit.TransferData(1_000_000_000), userSol, vaultSol, user)
	b.Inner(dep, consts.TokenProgram, testkit.TransferData(8_000_000), userToken, vaultTok, user)
	b.Inner(dep, consts.TokenProgram, testkit.MintToData(5), lpMint, userLp, authority)

	wd := b.Ix(consts.RaydiumCPMMProgram, ixData("withdraw", make([]byte, 24)...), liquidityAccounts()...)
	b.Inner(wd, consts.TokenProgram, testkit.BurnData(5), userLp, lpMint, user)
	b.Inner(wd, consts.TokenProgram, testkit.TransferData(500_000_000), vaultSol, userSol, authority)
	b.Inner(wd, consts.TokenProgram, testkit.TransferData(4_000_000), vaultTok, userToken, authority)

	ctx := run(t, b)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 2)

	add := pools[0]
	assert.Equal(t, core.PoolAdd, add.Type)
	assert.Equal(t, consts.WSOLMint, add.Token0Mint)
	assert.Equal(t, tokenMint, add.Token1Mint)
	assert.Equal(t, lpMint, add.LpMint)
	assert.Equal(t, "5", add.LpAmountRaw)
	assert.Equal(t, "1", add.Token0.Amount)

	remove := pools[1]
	assert.Equal(t, core.PoolRemove, remove.Type)
	assert.Equal(t, "0.5", remove.Token0.Amount)
	assert.Equal(t, "4", remove.Token1.Amount)
	assert.Equal(t, "1", remove.Idx)
}

func TestInitialize(t *testing.T) {
	accounts := []types.Pubkey{
		user, testkit.Key(70), authority, pool, consts.WSOLMint, tokenMint, lpMint,
		userSol, userToken, userLp, vaultSol, vaultTok, testkit.Key(71),
	}
	b := balances(testkit.NewTx(user))
	initIx := b.Ix(consts.RaydiumCPMMProgram, ixData("initialize", make([]byte, 24)...), accounts...)
	b.Inner(initIx, consts.TokenProgram, testkit.TransferData(1_000_000_000), userSol, vaultSol, user)
	b.Inner(initIx, consts.TokenProgram, testkit.TransferData(8_000_000), userToken, vaultTok, user)

	ctx := run(t, b)
	pools := eptest.Pools(ctx)
	require.Len(t, pools, 1)
	assert.Equal(t, core.PoolCreate, pools[0].Type)
	assert.Equal(t, pool, pools[0].Pool)
	assert.Equal(t, user, pools[0].User)
	assert.Equal(t, 3, pools[0].Accounts.Pool)
}

func TestUnknownInstruction(t *testing.T) {
	b := testkit.NewTx(user)
	b.Ix(consts.RaydiumCPMMProgram, ixData("collect_fund_fee"), pool)

	ctx := run(t, b)
	require.Len(t, ctx.Unknowns(), 1)
	assert.Empty(t, ctx.Warnings())
}
