package txadapter

import (
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptResolvesLookupAccounts(t *testing.T) {
	user := testkit.Key(1)
	program := testkit.Key(2)
	altW := testkit.Key(3)
	altR := testkit.Key(4)

	b := testkit.NewTx(user)
	b.Key(program)
	raw := b.Raw()
	raw.LoadedWritable = []types.Pubkey{altW}
	raw.LoadedReadonly = []types.Pubkey{altR}
	// 账户空间：user(0) program(1) altW(2) altR(3)
	raw.Instructions = []core.RawInstruction{{ProgramIDIndex: 1, Accounts: []uint32{0, 2, 3}, Data: []byte{9}}}

	tx, err := Adapt(raw)
	require.NoError(t, err)
	require.Len(t, tx.Accounts, 4)
	assert.True(t, tx.Accounts[2].Writable)
	assert.False(t, tx.Accounts[3].Writable)
	assert.False(t, tx.Accounts[3].Signer)
	assert.Equal(t, []types.Pubkey{user}, tx.Signers)

	require.Len(t, tx.TopLevel, 1)
	ix := tx.TopLevel[0]
	assert.Equal(t, program, ix.ProgramID)
	assert.Equal(t, []types.Pubkey{user, altW, altR}, ix.Accounts)
	assert.Equal(t, uint32(1), ix.StackHeight)
}

func TestAdaptRejectsOutOfRangeIndex(t *testing.T) {
	b := testkit.NewTx(testkit.Key(1))
	raw := b.Raw()
	raw.Instructions = []core.RawInstruction{{ProgramIDIndex: 0, Accounts: []uint32{5}}}

	_, err := Adapt(raw)
	assert.ErrorIs(t, err, core.ErrAccountIndexOutOfRange)

	raw.Instructions = nil
	raw.InnerGroups = []core.RawInnerGroup{{Index: 0, Instructions: []core.RawInnerInstruction{{ProgramIDIndex: 9}}}}
	_, err = Adapt(raw)
	assert.ErrorIs(t, err, core.ErrAccountIndexOutOfRange)

	raw.InnerGroups = nil
	raw.PostTokenBalances = []core.RawTokenBalance{{AccountIndex: 3, Mint: consts.WSOLMintStr}}
	_, err = Adapt(raw)
	assert.ErrorIs(t, err, core.ErrAccountIndexOutOfRange)
}

func TestAdaptRejectsStructuralErrors(t *testing.T) {
	_, err := Adapt(nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)

	raw := testkit.NewTx(testkit.Key(1)).Raw()
	raw.AccountKeys[0].Signer = false
	_, err = Adapt(raw)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)

	raw = testkit.NewTx(testkit.Key(1)).Raw()
	raw.PostTokenBalances = []core.RawTokenBalance{{AccountIndex: 0, Mint: "not-base58-0OIl"}}
	_, err = Adapt(raw)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)
}

func TestAdaptBalances(t *testing.T) {
	user := testkit.Key(1)
	userAta := testkit.Key(2)
	closed := testkit.Key(3)
	mint := testkit.Key(9)

	b := testkit.NewTx(user).
		TokenAccount(userAta, mint, user, 6, 100, 250).
		Lamports(user, 5_000_000, 3_000_000)
	raw := b.Raw()
	// closed 只出现在 pre 中
	raw.PreTokenBalances = append(raw.PreTokenBalances, core.RawTokenBalance{
		AccountIndex: b.Key(closed), Mint: consts.WSOLMintStr, Owner: user.String(), Amount: 42, Decimals: 9,
	})
	// 非 SPL Token 程序的余额被忽略
	raw.PostTokenBalances = append(raw.PostTokenBalances, core.RawTokenBalance{
		AccountIndex: 0, Mint: mint.String(), ProgramID: consts.SystemProgramStr, Amount: 1,
	})

	tx, err := Adapt(raw)
	require.NoError(t, err)

	bal := tx.Balances[userAta]
	require.NotNil(t, bal)
	assert.Equal(t, uint64(100), bal.PreBalance)
	assert.Equal(t, uint64(250), bal.PostBalance)
	assert.Equal(t, mint, bal.Token)
	assert.Equal(t, user, bal.PostOwner)
	assert.Equal(t, consts.TokenProgram, bal.TokenProgramID)

	gone := tx.Balances[closed]
	require.NotNil(t, gone)
	assert.Equal(t, uint64(42), gone.PreBalance)
	assert.Zero(t, gone.PostBalance)
	assert.Equal(t, consts.WSOLMint, gone.Token)

	_, ok := tx.Balances[user]
	assert.False(t, ok)

	dec, ok := tx.GetDecimalsByMint(mint)
	assert.True(t, ok)
	assert.Equal(t, uint8(6), dec)

	sol, ok := tx.SolBalanceAt(0)
	require.True(t, ok)
	assert.Equal(t, uint64(5_000_000), sol.PreBalance)
	assert.Equal(t, uint64(3_000_000), sol.PostBalance)
}

func TestAdaptKeepsInnerGroupsUnsorted(t *testing.T) {
	user := testkit.Key(1)
	program := testkit.Key(2)
	b := testkit.NewTx(user)
	b.Ix(program, []byte{1})
	b.Ix(program, []byte{2})
	b.Inner(1, consts.TokenProgram, testkit.TransferData(5), user)
	b.Inner(0, consts.TokenProgram, testkit.TransferData(6), user)

	tx, err := Adapt(b.Raw())
	require.NoError(t, err)
	require.Len(t, tx.InnerGroups, 2)
	assert.Equal(t, uint32(1), tx.InnerGroups[0].Index)
	assert.Equal(t, uint16(1), tx.InnerGroups[0].Instructions[0].IxIndex)
	assert.Equal(t, uint32(2), tx.InnerGroups[0].Instructions[0].StackHeight)
	assert.Empty(t, tx.Instructions)
	assert.Equal(t, 4, tx.InstructionCount())
}
